package controllers

import "net/http"

// Root answers the storefront's availability probe with plain text.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Quote Desk API is running"))
	}
}

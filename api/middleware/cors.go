package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware applying the storefront origin policy. Extra
// origins come from configuration so staging storefronts can be added
// without a deploy of this list.
func CORS(extraOrigins []string) func(http.Handler) http.Handler {
	origins := append([]string{"http://localhost:3000"}, extraOrigins...)
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}

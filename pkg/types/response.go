package types

// SuccessEnvelope wraps every 2xx JSON response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope wraps every non-2xx JSON response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

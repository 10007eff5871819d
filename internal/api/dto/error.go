package dto

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is returned by mutations without a row to show.
type SuccessResponse struct {
	Success bool `json:"success"`
}

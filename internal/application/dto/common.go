package dto

// ErrorResponse is the HTTP error body. Field and Hint are set for failed
// invoicing preconditions so the sales screen can point at the exact gap.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

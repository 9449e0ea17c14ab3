// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}

// BlockingError wraps a hard-blocking order submission failure with the
// per-line conflicts that caused it, so the operator can see exactly which
// truck and station refused to resolve.
type BlockingError struct {
	Detail    string   `json:"detail"`
	Conflicts []string `json:"conflicts"`
}

func NewBlocking(detail string, conflicts []string) *BlockingError {
	return &BlockingError{Detail: detail, Conflicts: conflicts}
}

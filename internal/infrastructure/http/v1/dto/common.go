// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// IDResponse returns just the created entity ID.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a simple success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListResponse wraps list results.
type ListResponse struct {
	Items  any `json:"items"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

package handler

import "github.com/shopadmin/backend/internal/interfaces/http/dto"

// Swagger models. Handlers write dto.Response; these mirror its shape with a
// typed data field so the generated docs show the payload of each route.

// APIResponse wraps a successful payload
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data,omitempty"`
}

// PagedResponse wraps one page of a list endpoint
type PagedResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

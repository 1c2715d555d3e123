// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// --- List queries ---

// ListQuery contains common list parameters.
type ListQuery struct {
	Search         string `form:"search"`
	OrderBy        string `form:"orderBy"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
	IncludeDeleted bool   `form:"includeDeleted"`
}

// ToFilter converts query parameters to a domain filter with defaults applied.
func (q ListQuery) ToFilter() domain.ListFilter {
	limit := q.Limit
	if limit == 0 {
		limit = 50
	}
	return domain.ListFilter{
		Search:         q.Search,
		OrderBy:        q.OrderBy,
		Limit:          limit,
		Offset:         q.Offset,
		IncludeDeleted: q.IncludeDeleted,
	}
}

// --- List Response ---

// ListResponse wraps list results with pagination metadata.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse builds a ListResponse from mapped items and the result metadata.
func NewListResponse[T, R any](result domain.ListResult[T], mapped []R) ListResponse {
	return ListResponse{
		Items:      mapped,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

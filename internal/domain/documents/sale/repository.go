package sale

import (
	"context"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// Repository defines persistence operations for Sale documents.
// Create and Update must participate in the caller's transaction via context.
type Repository interface {
	// Create inserts the sale and its lines.
	Create(ctx context.Context, s *Sale) error

	// GetByID loads the sale with its lines.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// Update modifies the sale header (with optimistic locking).
	// Lines are immutable after creation.
	Update(ctx context.Context, s *Sale) error

	// List retrieves sales with filtering and pagination.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error)
}

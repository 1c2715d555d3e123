package purchase

import (
	"context"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// Repository defines persistence operations for Purchase documents.
// Create and Update must participate in the caller's transaction via context.
type Repository interface {
	// Create inserts the purchase and its lines.
	Create(ctx context.Context, p *Purchase) error

	// GetByID loads the purchase with its lines.
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	// Update modifies the purchase header (with optimistic locking).
	Update(ctx context.Context, p *Purchase) error

	// List retrieves purchases with filtering and pagination.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Purchase], error)
}

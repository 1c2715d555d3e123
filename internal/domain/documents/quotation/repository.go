package quotation

import (
	"context"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// Repository defines persistence operations for Quotation documents.
type Repository interface {
	// Create inserts the quotation and its lines.
	Create(ctx context.Context, q *Quotation) error

	// GetByID loads the quotation with its lines.
	GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error)

	// Update modifies the quotation header (with optimistic locking).
	Update(ctx context.Context, q *Quotation) error

	// List retrieves quotations with filtering and pagination.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Quotation], error)
}

package counterparty

import (
	"context"

	"retailcore/internal/domain"
)

// Repository defines persistence operations for the Counterparty catalog.
type Repository interface {
	domain.CatalogRepository[*Counterparty]

	// GetByAccountNo retrieves a counterparty by its numeric account number.
	GetByAccountNo(ctx context.Context, accountNo string) (*Counterparty, error)
}

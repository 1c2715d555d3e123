package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailcore/internal/domain/catalogs/counterparty"
	"retailcore/internal/infrastructure/storage/postgres"
)

const counterpartyTable = "cat_counterparties"

// CounterpartyRepo implements counterparty.Repository.
type CounterpartyRepo struct {
	*BaseCatalogRepo[*counterparty.Counterparty]
}

// NewCounterpartyRepo creates a new counterparty repository.
func NewCounterpartyRepo(txm *postgres.TxManager) *CounterpartyRepo {
	return &CounterpartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*counterparty.Counterparty](
			txm,
			counterpartyTable,
			postgres.ExtractDBColumns[counterparty.Counterparty](),
			func() *counterparty.Counterparty { return &counterparty.Counterparty{} },
		),
	}
}

// Ensure interface compliance.
var _ counterparty.Repository = (*CounterpartyRepo)(nil)

// GetByAccountNo retrieves a counterparty by its assigned account number.
func (r *CounterpartyRepo) GetByAccountNo(ctx context.Context, accountNo string) (*counterparty.Counterparty, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"account_no": accountNo}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

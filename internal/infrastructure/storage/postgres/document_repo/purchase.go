package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
	"retailcore/internal/domain/documents/purchase"
	"retailcore/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "doc_purchases"
	purchaseLinesTable = "doc_purchase_lines"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[*purchase.Purchase]
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*purchase.Purchase](
			txm,
			purchasesTable,
			postgres.ExtractDBColumns[purchase.Purchase](),
			func() *purchase.Purchase { return &purchase.Purchase{} },
		),
	}
}

// Ensure interface compliance.
var _ purchase.Repository = (*PurchaseRepo)(nil)

// Create inserts the purchase header and its lines.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	if err := r.CreateHeader(ctx, p); err != nil {
		return err
	}

	columns := []string{"id", "purchase_id", "description", "qty", "unit_cost", "line_total"}
	rows := make([][]any, 0, len(p.Lines))
	for _, line := range p.Lines {
		rows = append(rows, []any{
			line.ID, p.ID, line.Description, line.Qty, line.UnitCost, line.LineTotal,
		})
	}

	return r.insertLines(ctx, purchaseLinesTable, columns, rows)
}

// GetByID loads the purchase with its lines.
func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	p, err := r.GetHeader(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	lines, err := r.getLines(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	p.Lines = lines

	return p, nil
}

// List retrieves purchases with filtering. Lines are not loaded for list views.
func (r *PurchaseRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	return r.ListHeaders(ctx, filter)
}

func (r *PurchaseRepo) getLines(ctx context.Context, purchaseID id.ID) ([]purchase.Line, error) {
	q := r.Builder().
		Select("id", "purchase_id", "description", "qty", "unit_cost", "line_total").
		From(purchaseLinesTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

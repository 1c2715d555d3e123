package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
	"retailcore/internal/domain/documents/sale"
	"retailcore/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[*sale.Sale]
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*sale.Sale](
			txm,
			salesTable,
			postgres.ExtractDBColumns[sale.Sale](),
			func() *sale.Sale { return &sale.Sale{} },
		),
	}
}

// Ensure interface compliance.
var _ sale.Repository = (*SaleRepo)(nil)

// Create inserts the sale header and its lines.
func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	if err := r.CreateHeader(ctx, s); err != nil {
		return err
	}

	columns := []string{"id", "sale_id", "description", "qty", "unit_price", "discount_pct", "tax_pct", "line_total"}
	rows := make([][]any, 0, len(s.Lines))
	for _, line := range s.Lines {
		rows = append(rows, []any{
			line.ID, s.ID, line.Description, line.Qty,
			line.UnitPrice, line.DiscountPct, line.TaxPct, line.LineTotal,
		})
	}

	return r.insertLines(ctx, saleLinesTable, columns, rows)
}

// GetByID loads the sale with its lines.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	s, err := r.GetHeader(ctx, saleID)
	if err != nil {
		return nil, err
	}

	lines, err := r.getLines(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.Lines = lines

	return s, nil
}

// List retrieves sales with filtering. Lines are not loaded for list views.
func (r *SaleRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*sale.Sale], error) {
	return r.ListHeaders(ctx, filter)
}

func (r *SaleRepo) getLines(ctx context.Context, saleID id.ID) ([]sale.Line, error) {
	q := r.Builder().
		Select("id", "sale_id", "description", "qty", "unit_price", "discount_pct", "tax_pct", "line_total").
		From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sale.Line
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

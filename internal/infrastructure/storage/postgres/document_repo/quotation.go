package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
	"retailcore/internal/domain/documents/quotation"
	"retailcore/internal/infrastructure/storage/postgres"
)

const (
	quotationsTable     = "doc_quotations"
	quotationLinesTable = "doc_quotation_lines"
)

// QuotationRepo implements quotation.Repository.
type QuotationRepo struct {
	*BaseDocumentRepo[*quotation.Quotation]
}

// NewQuotationRepo creates a new quotation repository.
func NewQuotationRepo(txm *postgres.TxManager) *QuotationRepo {
	return &QuotationRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*quotation.Quotation](
			txm,
			quotationsTable,
			postgres.ExtractDBColumns[quotation.Quotation](),
			func() *quotation.Quotation { return &quotation.Quotation{} },
		),
	}
}

// Ensure interface compliance.
var _ quotation.Repository = (*QuotationRepo)(nil)

// Create inserts the quotation header and its lines.
func (r *QuotationRepo) Create(ctx context.Context, q *quotation.Quotation) error {
	if err := r.CreateHeader(ctx, q); err != nil {
		return err
	}

	columns := []string{"id", "quotation_id", "description", "qty", "unit_price", "discount_pct", "tax_pct", "line_total"}
	rows := make([][]any, 0, len(q.Lines))
	for _, line := range q.Lines {
		rows = append(rows, []any{
			line.ID, q.ID, line.Description, line.Qty,
			line.UnitPrice, line.DiscountPct, line.TaxPct, line.LineTotal,
		})
	}

	return r.insertLines(ctx, quotationLinesTable, columns, rows)
}

// GetByID loads the quotation with its lines.
func (r *QuotationRepo) GetByID(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	q, err := r.GetHeader(ctx, quotationID)
	if err != nil {
		return nil, err
	}

	lines, err := r.getLines(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	q.Lines = lines

	return q, nil
}

// List retrieves quotations with filtering. Lines are not loaded for list views.
func (r *QuotationRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*quotation.Quotation], error) {
	return r.ListHeaders(ctx, filter)
}

func (r *QuotationRepo) getLines(ctx context.Context, quotationID id.ID) ([]quotation.Line, error) {
	q := r.Builder().
		Select("id", "quotation_id", "description", "qty", "unit_price", "discount_pct", "tax_pct", "line_total").
		From(quotationLinesTable).
		Where(squirrel.Eq{"quotation_id": quotationID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []quotation.Line
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

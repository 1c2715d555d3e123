package sale

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/sequence"
	"retailcore/internal/core/types"
	"retailcore/internal/domain"
	"retailcore/internal/domain/catalogs/counterparty"
	"retailcore/internal/domain/ledger"
	"retailcore/internal/domain/ledger/ledgertest"
)

type memRepo struct {
	mu    sync.Mutex
	sales map[id.ID]*Sale
}

func newMemRepo() *memRepo {
	return &memRepo{sales: make(map[id.ID]*Sale)}
}

func (r *memRepo) Create(ctx context.Context, s *Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.sales[s.ID] = &copied
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sales[saleID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, apperror.NewNotFound("sale", saleID)
}

// Update mirrors the SQL repository's optimistic lock: the incoming version
// must match the stored one, and the stored row advances by one.
func (r *memRepo) Update(ctx context.Context, s *Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sales[s.ID]
	if !ok {
		return apperror.NewNotFound("sale", s.ID)
	}
	if stored.Version != s.Version {
		return apperror.NewConcurrentModification("doc_sales", s.ID)
	}
	s.SetVersion(s.Version + 1)
	copied := *s
	r.sales[s.ID] = &copied
	return nil
}

func (r *memRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Sale
	for _, s := range r.sales {
		items = append(items, s)
	}
	return domain.ListResult[*Sale]{Items: items, TotalCount: int64(len(items))}, nil
}

var _ Repository = (*memRepo)(nil)

type staticCustomers struct {
	byID map[id.ID]*counterparty.Counterparty
}

func (c staticCustomers) GetByID(ctx context.Context, cpID id.ID) (*counterparty.Counterparty, error) {
	if cp, ok := c.byID[cpID]; ok {
		return cp, nil
	}
	return nil, apperror.NewNotFound("counterparty", cpID)
}

type fixture struct {
	svc        *Service
	repo       *memRepo
	ledgerRepo *ledgertest.MemRepo
	customer   *counterparty.Counterparty
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ledgerRepo := ledgertest.NewMemRepo()
	ledgerRepo.SeedBaseAccounts()
	txm := ledgertest.TxManager{}
	engine := ledger.NewEngine(ledgerRepo, txm)
	directory := ledger.NewDirectory(ledgerRepo)

	customer := counterparty.New("CP-2025-00001", "Jane Doe", counterparty.TypeCustomer)
	customer.AccountNo = "1015"

	repo := newMemRepo()
	svc := NewService(
		repo,
		staticCustomers{byID: map[id.ID]*counterparty.Counterparty{customer.ID: customer}},
		engine,
		directory,
		ledgerRepo,
		&sequence.MockGenerator{},
		txm,
	)
	return &fixture{svc: svc, repo: repo, ledgerRepo: ledgerRepo, customer: customer}
}

func newDraftSale(customerID id.ID) *Sale {
	s := New(customerID)
	s.Lines = []Line{{
		ID:          id.New(),
		SaleID:      s.ID,
		Description: "Widget",
		Qty:         types.NewQuantityFromFloat64(2),
		UnitPrice:   types.MustMoney("500.00"),
		DiscountPct: types.Zero(),
		TaxPct:      types.MustMoney("18"),
	}}
	return s
}

func TestService_Create_PostsInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, nil))

	assert.NotEmpty(t, s.Number)
	assert.Equal(t, "1000", s.Subtotal.String())
	assert.Equal(t, "180", s.TaxAmount.String())
	assert.Equal(t, "1180", s.Total.String())
	assert.Equal(t, StatusPending, s.Status)

	txns, err := f.ledgerRepo.ListByReference(ctx, ledger.NewReference(ledger.ReferenceSale, s.ID))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Len(t, txns[0].Entries, 3)
	assert.True(t, txns[0].TotalDebit().Equal(txns[0].TotalCredit()))

	// Customer owes the full invoice total.
	ar, err := f.ledgerRepo.AccountBalance(ctx, "AR.CUSTOMER.1015")
	require.NoError(t, err)
	assert.Equal(t, "1180", ar.String())
}

func TestService_Create_WithImmediatePayment(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	payment := &PaymentInput{Amount: types.MustMoney("1180.00"), Method: "cash"}
	require.NoError(t, f.svc.Create(ctx, s, payment))

	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, "1180", s.PaidAmount.String())
	assert.True(t, s.DueAmount().IsZero())

	// AR nets to zero: debited by the invoice, credited by the payment.
	ar, err := f.ledgerRepo.AccountBalance(ctx, "AR.CUSTOMER.1015")
	require.NoError(t, err)
	assert.True(t, ar.IsZero())

	cash, err := f.ledgerRepo.AccountBalance(ctx, ledger.CodeCash)
	require.NoError(t, err)
	assert.Equal(t, "1180", cash.String())
}

func TestService_RecordPayment_Partial(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, nil))

	updated, err := f.svc.RecordPayment(ctx, s.ID, PaymentInput{
		Amount: types.MustMoney("500.00"),
		Method: "bank",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPartiallyPaid, updated.Status)
	assert.Equal(t, "500", updated.PaidAmount.String())
	assert.Equal(t, "680", updated.DueAmount().String())
}

func TestService_RecordPayment_ExceedsOutstanding(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, nil))
	before := f.ledgerRepo.TransactionCount()

	_, err := f.svc.RecordPayment(ctx, s.ID, PaymentInput{
		Amount: types.MustMoney("5000.00"),
		Method: "cash",
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAmountExceedsOutstanding))
	assert.Equal(t, before, f.ledgerRepo.TransactionCount(), "no transaction on rejection")
}

func TestService_RecordPayment_NoDoubleClearing(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	// Sale fully paid at creation.
	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, &PaymentInput{
		Amount: types.MustMoney("1180.00"),
		Method: "cash",
	}))

	// A later payment call against the same sale must not clear AR again.
	_, err := f.svc.RecordPayment(ctx, s.ID, PaymentInput{
		Amount: types.MustMoney("1180.00"),
		Method: "cash",
	})
	require.Error(t, err)

	ar, err := f.ledgerRepo.AccountBalance(ctx, "AR.CUSTOMER.1015")
	require.NoError(t, err)
	assert.True(t, ar.IsZero(), "AR must be credited exactly once")
}

func TestService_RecordPayment_LedgerAuthoritativeOverPaidAmount(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, &PaymentInput{
		Amount: types.MustMoney("1000.00"),
		Method: "cash",
	}))

	// Simulate drift: the document claims nothing was paid.
	drifted, err := f.repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	drifted.PaidAmount = types.Zero()
	drifted.Status = StatusPending
	require.NoError(t, f.repo.Update(ctx, drifted))

	// Outstanding is derived from the ledger (180), not the drifted field.
	_, err = f.svc.RecordPayment(ctx, s.ID, PaymentInput{
		Amount: types.MustMoney("1000.00"),
		Method: "cash",
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAmountExceedsOutstanding))

	updated, err := f.svc.RecordPayment(ctx, s.ID, PaymentInput{
		Amount: types.MustMoney("180.00"),
		Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, "1180", updated.PaidAmount.String())
}

func TestService_RecordPayment_CompletedSale(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, &PaymentInput{
		Amount: types.MustMoney("1180.00"),
		Method: "cash",
	}))

	_, err := f.svc.RecordPayment(ctx, s.ID, PaymentInput{
		Amount: types.MustMoney("1.00"),
		Method: "cash",
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))
}

func TestService_Create_WithImmediatePayment_VersionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	// Create inserts version 1; the immediate-payment update must match that
	// stored version and advance it.
	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, &PaymentInput{
		Amount: types.MustMoney("100.00"),
		Method: "cash",
	}))
	assert.Equal(t, 2, s.Version)

	updated, err := f.svc.RecordPayment(ctx, s.ID, PaymentInput{
		Amount: types.MustMoney("1080.00"),
		Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Version)
	assert.Equal(t, StatusCompleted, updated.Status)
}

func TestService_Cancel_VersionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, nil))

	cancelled, err := f.svc.Cancel(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled.Version)
}

func TestMemRepo_Update_StaleVersionRejected(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, nil))

	stale, err := f.repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	stale.SetVersion(stale.Version + 1)

	err = f.repo.Update(ctx, stale)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConcurrentModification))
}

func TestService_Cancel_ReversesInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, nil))

	cancelled, err := f.svc.Cancel(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	ar, err := f.ledgerRepo.AccountBalance(ctx, "AR.CUSTOMER.1015")
	require.NoError(t, err)
	assert.True(t, ar.IsZero(), "reversal nets the receivable to zero")
}

func TestService_Cancel_PaidSaleRejected(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.Create(ctx, s, &PaymentInput{
		Amount: types.MustMoney("100.00"),
		Method: "cash",
	}))

	_, err := f.svc.Cancel(ctx, s.ID)

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))
}

func TestService_CreateFromQuotation_PostsConversionReference(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.CreateFromQuotation(ctx, s, nil))

	// The invoice carries the conversion reference, not the plain sale one.
	converted, err := f.ledgerRepo.ListByReference(ctx,
		ledger.NewReference(ledger.ReferenceQuotationConversion, s.ID))
	require.NoError(t, err)
	require.Len(t, converted, 1)
	assert.True(t, converted[0].TotalDebit().Equal(converted[0].TotalCredit()))

	plain, err := f.ledgerRepo.ListByReference(ctx,
		ledger.NewReference(ledger.ReferenceSale, s.ID))
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestService_Cancel_ReversesConversionInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	s := newDraftSale(f.customer.ID)
	require.NoError(t, f.svc.CreateFromQuotation(ctx, s, nil))

	cancelled, err := f.svc.Cancel(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	ar, err := f.ledgerRepo.AccountBalance(ctx, "AR.CUSTOMER.1015")
	require.NoError(t, err)
	assert.True(t, ar.IsZero())
}

func TestService_Create_NotACustomer(t *testing.T) {
	f := newFixture(t)

	supplier := counterparty.New("CP-2025-00002", "Acme Supplies", counterparty.TypeSupplier)
	supplier.AccountNo = "2020"
	f.svc.customers = staticCustomers{byID: map[id.ID]*counterparty.Counterparty{supplier.ID: supplier}}

	err := f.svc.Create(t.Context(), newDraftSale(supplier.ID), nil)

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_ComputeTotals_DiscountBeforeTax(t *testing.T) {
	s := New(id.New())
	s.Lines = []Line{{
		Qty:         types.NewQuantityFromFloat64(1),
		UnitPrice:   types.MustMoney("100.00"),
		DiscountPct: types.MustMoney("10"),
		TaxPct:      types.MustMoney("18"),
	}}

	s.ComputeTotals()

	assert.Equal(t, "100", s.Subtotal.String())
	assert.Equal(t, "10", s.DiscountAmount.String())
	assert.Equal(t, "16.2", s.TaxAmount.String(), "tax applies to the discounted net")
	assert.Equal(t, "106.2", s.Total.String())
}

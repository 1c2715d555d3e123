package purchase

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
	mu        sync.Mutex
	purchases map[id.ID]*Purchase
}

func newMemRepo() *memRepo {
	return &memRepo{purchases: make(map[id.ID]*Purchase)}
}

func (r *memRepo) Create(ctx context.Context, p *Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *p
	r.purchases[p.ID] = &copied
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.purchases[purchaseID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, apperror.NewNotFound("purchase", purchaseID)
}

// Update mirrors the SQL repository's optimistic lock: the incoming version
// must match the stored one, and the stored row advances by one.
func (r *memRepo) Update(ctx context.Context, p *Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.purchases[p.ID]
	if !ok {
		return apperror.NewNotFound("purchase", p.ID)
	}
	if stored.Version != p.Version {
		return apperror.NewConcurrentModification("doc_purchases", p.ID)
	}
	p.SetVersion(p.Version + 1)
	copied := *p
	r.purchases[p.ID] = &copied
	return nil
}

func (r *memRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Purchase], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Purchase
	for _, p := range r.purchases {
		items = append(items, p)
	}
	return domain.ListResult[*Purchase]{Items: items, TotalCount: int64(len(items))}, nil
}

var _ Repository = (*memRepo)(nil)

type staticSuppliers struct {
	byID map[id.ID]*counterparty.Counterparty
}

func (c staticSuppliers) GetByID(ctx context.Context, cpID id.ID) (*counterparty.Counterparty, error) {
	if cp, ok := c.byID[cpID]; ok {
		return cp, nil
	}
	return nil, apperror.NewNotFound("counterparty", cpID)
}

type fixture struct {
	svc        *Service
	ledgerRepo *ledgertest.MemRepo
	supplier   *counterparty.Counterparty
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ledgerRepo := ledgertest.NewMemRepo()
	ledgerRepo.SeedBaseAccounts()
	txm := ledgertest.TxManager{}
	engine := ledger.NewEngine(ledgerRepo, txm)
	directory := ledger.NewDirectory(ledgerRepo)

	supplier := counterparty.New("CP-2025-00002", "Acme Supplies", counterparty.TypeSupplier)
	supplier.AccountNo = "2020"

	svc := NewService(
		newMemRepo(),
		staticSuppliers{byID: map[id.ID]*counterparty.Counterparty{supplier.ID: supplier}},
		engine,
		directory,
		ledgerRepo,
		&sequence.MockGenerator{},
		txm,
	)
	return &fixture{svc: svc, ledgerRepo: ledgerRepo, supplier: supplier}
}

func newDraftPurchase(supplierID id.ID, total string) *Purchase {
	p := New(supplierID)
	p.Lines = []Line{{
		ID:          id.New(),
		PurchaseID:  p.ID,
		Description: "Stock replenishment",
		Qty:         types.NewQuantityFromFloat64(1),
		UnitCost:    types.MustMoney(total),
	}}
	return p
}

func TestService_Create_PostsBill(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := newDraftPurchase(f.supplier.ID, "500000.00")
	require.NoError(t, f.svc.Create(ctx, p))

	assert.NotEmpty(t, p.Number)
	assert.Equal(t, "500000", p.Total.String())
	assert.Equal(t, StatusPending, p.Status)

	// We owe the supplier the full bill.
	ap, err := f.ledgerRepo.AccountBalance(ctx, "AP.SUPPLIER.2020")
	require.NoError(t, err)
	assert.Equal(t, "-500000", ap.String(), "payable carries a credit balance")
}

func TestService_RecordPayment_PartialSettlement(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := newDraftPurchase(f.supplier.ID, "500000.00")
	require.NoError(t, f.svc.Create(ctx, p))

	updated, err := f.svc.RecordPayment(ctx, p.ID, PaymentInput{
		Amount: types.MustMoney("150000.00"),
		Method: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, "150000", updated.PaidAmount.String())
	assert.Equal(t, "350000", updated.DueAmount().String())
	assert.Equal(t, StatusPartiallyPaid, updated.Status)

	// One payment transaction with exactly two entries:
	// debit AP.SUPPLIER.2020, credit ASSET.CASH.
	txns, err := f.ledgerRepo.ListByReference(ctx,
		ledger.NewReference(ledger.ReferenceSupplierPayment, p.ID))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Len(t, txns[0].Entries, 2)

	byCode := map[string]ledger.Entry{}
	for _, e := range txns[0].Entries {
		byCode[e.AccountCode] = e
	}
	assert.Equal(t, "150000", byCode["AP.SUPPLIER.2020"].Debit.String())
	assert.Equal(t, "150000", byCode[ledger.CodeCash].Credit.String())
}

func TestService_RecordPayment_ExceedsOutstanding(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := newDraftPurchase(f.supplier.ID, "3000.00")
	require.NoError(t, f.svc.Create(ctx, p))
	before := f.ledgerRepo.TransactionCount()

	_, err := f.svc.RecordPayment(ctx, p.ID, PaymentInput{
		Amount: types.MustMoney("5000.00"),
		Method: "cash",
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAmountExceedsOutstanding))
	assert.Equal(t, before, f.ledgerRepo.TransactionCount(), "no transaction on rejection")
}

func TestService_RecordPayment_FullSettlementCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := newDraftPurchase(f.supplier.ID, "1000.00")
	require.NoError(t, f.svc.Create(ctx, p))

	_, err := f.svc.RecordPayment(ctx, p.ID, PaymentInput{
		Amount: types.MustMoney("400.00"), Method: "bank",
	})
	require.NoError(t, err)
	updated, err := f.svc.RecordPayment(ctx, p.ID, PaymentInput{
		Amount: types.MustMoney("600.00"), Method: "bank",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, updated.Status)
	assert.True(t, updated.DueAmount().IsZero())

	ap, err := f.ledgerRepo.AccountBalance(ctx, "AP.SUPPLIER.2020")
	require.NoError(t, err)
	assert.True(t, ap.IsZero())
}

func TestService_RecordPayment_CompletedRejected(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := newDraftPurchase(f.supplier.ID, "100.00")
	require.NoError(t, f.svc.Create(ctx, p))
	_, err := f.svc.RecordPayment(ctx, p.ID, PaymentInput{
		Amount: types.MustMoney("100.00"), Method: "cash",
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, p.ID, PaymentInput{
		Amount: types.MustMoney("1.00"), Method: "cash",
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStateTransition))
}

func TestService_RecordPayment_VersionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	// Create inserts version 1; every settlement update must match the
	// stored version and advance it.
	p := newDraftPurchase(f.supplier.ID, "1000.00")
	require.NoError(t, f.svc.Create(ctx, p))
	assert.Equal(t, 1, p.Version)

	first, err := f.svc.RecordPayment(ctx, p.ID, PaymentInput{
		Amount: types.MustMoney("400.00"), Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Version)

	second, err := f.svc.RecordPayment(ctx, p.ID, PaymentInput{
		Amount: types.MustMoney("600.00"), Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, second.Version)
}

func TestService_Create_NotASupplier(t *testing.T) {
	f := newFixture(t)

	customer := counterparty.New("CP-2025-00003", "Jane Doe", counterparty.TypeCustomer)
	customer.AccountNo = "1015"
	f.svc.suppliers = staticSuppliers{byID: map[id.ID]*counterparty.Counterparty{customer.ID: customer}}

	err := f.svc.Create(t.Context(), newDraftPurchase(customer.ID, "100.00"))

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_Cancel_ReversesBill(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	p := newDraftPurchase(f.supplier.ID, "2500.00")
	require.NoError(t, f.svc.Create(ctx, p))

	cancelled, err := f.svc.Cancel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	ap, err := f.ledgerRepo.AccountBalance(ctx, "AP.SUPPLIER.2020")
	require.NoError(t, err)
	assert.True(t, ap.IsZero())
}

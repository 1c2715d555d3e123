package counterparty

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/sequence"
	"retailcore/internal/domain"
)

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRepo struct {
	mu    sync.Mutex
	byID  map[id.ID]*Counterparty
	byNo  map[string]*Counterparty
	codes map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		byID:  make(map[id.ID]*Counterparty),
		byNo:  make(map[string]*Counterparty),
		codes: make(map[string]bool),
	}
}

func (r *memRepo) Create(ctx context.Context, cp *Counterparty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codes[cp.Code] {
		return apperror.NewDuplicate("counterparty", "code", cp.Code)
	}
	r.byID[cp.ID] = cp
	r.byNo[cp.AccountNo] = cp
	r.codes[cp.Code] = true
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, cpID id.ID) (*Counterparty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cp, ok := r.byID[cpID]; ok {
		return cp, nil
	}
	return nil, apperror.NewNotFound("counterparty", cpID)
}

func (r *memRepo) GetByCode(ctx context.Context, code string) (*Counterparty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cp := range r.byID {
		if cp.Code == code {
			return cp, nil
		}
	}
	return nil, apperror.NewNotFound("counterparty", code)
}

func (r *memRepo) GetByAccountNo(ctx context.Context, accountNo string) (*Counterparty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cp, ok := r.byNo[accountNo]; ok {
		return cp, nil
	}
	return nil, apperror.NewNotFound("counterparty", accountNo)
}

func (r *memRepo) Update(ctx context.Context, cp *Counterparty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[cp.ID]; !ok {
		return apperror.NewNotFound("counterparty", cp.ID)
	}
	r.byID[cp.ID] = cp
	return nil
}

func (r *memRepo) Delete(ctx context.Context, cpID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cp, ok := r.byID[cpID]; ok {
		cp.MarkDeleted()
		return nil
	}
	return apperror.NewNotFound("counterparty", cpID)
}

func (r *memRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Counterparty], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Counterparty
	for _, cp := range r.byID {
		items = append(items, cp)
	}
	return domain.ListResult[*Counterparty]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *memRepo) Exists(ctx context.Context, cpID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[cpID]
	return ok, nil
}

func (r *memRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[code], nil
}

var _ Repository = (*memRepo)(nil)

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, &sequence.MockGenerator{}, passthroughTxManager{}), repo
}

func TestService_Create_AssignsCustomerBand(t *testing.T) {
	svc, _ := newTestService()
	ctx := t.Context()

	first := New("", "Jane Doe", TypeCustomer)
	require.NoError(t, svc.Create(ctx, first))
	second := New("", "John Smith", TypeCustomer)
	require.NoError(t, svc.Create(ctx, second))

	assert.Equal(t, "1000", first.AccountNo)
	assert.Equal(t, "1001", second.AccountNo)
	assert.NotEmpty(t, first.Code)
}

func TestService_Create_AssignsSupplierBand(t *testing.T) {
	svc, _ := newTestService()

	supplier := New("", "Acme Supplies", TypeSupplier)
	require.NoError(t, svc.Create(t.Context(), supplier))

	assert.Equal(t, "2000", supplier.AccountNo)
}

func TestService_Create_CustomerBandExhausted(t *testing.T) {
	repo := newMemRepo()
	gen := &sequence.MockGenerator{}
	svc := NewService(repo, gen, passthroughTxManager{})
	ctx := t.Context()

	// Seed the band at its ceiling.
	require.NoError(t, gen.SetNextValue(ctx, sequence.Config{Prefix: "ACCT.CUSTOMER", Reset: sequence.ResetNever}, time.Now(), 1999))

	err := svc.Create(ctx, New("", "One Too Many", TypeCustomer))

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
}

func TestService_Create_InvalidType(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Create(t.Context(), New("", "Nobody", Type("alien")))

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_Update_AccountNoImmutable(t *testing.T) {
	svc, _ := newTestService()
	ctx := t.Context()

	cp := New("", "Jane Doe", TypeCustomer)
	require.NoError(t, svc.Create(ctx, cp))

	changed := *cp
	changed.AccountNo = "1500"
	err := svc.Update(ctx, &changed)

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_GetByAccountNo(t *testing.T) {
	svc, _ := newTestService()
	ctx := t.Context()

	cp := New("", "Jane Doe", TypeCustomer)
	require.NoError(t, svc.Create(ctx, cp))

	found, err := svc.GetByAccountNo(ctx, cp.AccountNo)
	require.NoError(t, err)
	assert.Equal(t, cp.ID, found.ID)
}

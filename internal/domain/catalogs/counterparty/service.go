package counterparty

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/sequence"
	"retailcore/internal/core/tx"
	"retailcore/internal/domain"
	"retailcore/pkg/logger"
)

// Account number bands. Customers get 1000-1999, suppliers 2000 and up.
// Bands never reset; a counterparty keeps its number for life.
var (
	customerBand = sequence.Config{Prefix: "ACCT.CUSTOMER", Reset: sequence.ResetNever, Start: 999, Bare: true}
	supplierBand = sequence.Config{Prefix: "ACCT.SUPPLIER", Reset: sequence.ResetNever, Start: 1999, Bare: true}
)

const customerBandEnd = 1999

// Service provides business logic for the Counterparty catalog.
type Service struct {
	repo Repository
	seq  sequence.Generator
	txm  tx.Manager
}

// NewService creates a new Counterparty service.
func NewService(repo Repository, seq sequence.Generator, txm tx.Manager) *Service {
	return &Service{repo: repo, seq: seq, txm: txm}
}

// Create validates the counterparty, assigns its code and account number
// and persists it. Number assignment and insert share one transaction so a
// failed insert never burns a visible account number gap in the band.
func (s *Service) Create(ctx context.Context, cp *Counterparty) error {
	if err := cp.Validate(ctx); err != nil {
		return err
	}

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if cp.Code == "" {
			code, err := s.seq.Next(ctx, sequence.DefaultConfig("CP"), time.Now())
			if err != nil {
				return fmt.Errorf("generate counterparty code: %w", err)
			}
			cp.Code = code
		}

		if cp.AccountNo == "" {
			accountNo, err := s.assignAccountNo(ctx, cp)
			if err != nil {
				return err
			}
			cp.AccountNo = accountNo
		}

		if err := s.repo.Create(ctx, cp); err != nil {
			return err
		}

		logger.Info(ctx, "counterparty created",
			"id", cp.ID,
			"code", cp.Code,
			"account_no", cp.AccountNo,
			"type", string(cp.Type),
		)
		return nil
	})
}

func (s *Service) assignAccountNo(ctx context.Context, cp *Counterparty) (string, error) {
	band := supplierBand
	if cp.IsCustomer() {
		band = customerBand
	}

	value, err := s.seq.NextValue(ctx, band, time.Now())
	if err != nil {
		return "", fmt.Errorf("assign account number: %w", err)
	}
	if cp.IsCustomer() && value > customerBandEnd {
		return "", apperror.NewConflict("customer account number band exhausted").
			WithDetail("band_end", customerBandEnd)
	}
	return strconv.FormatInt(value, 10), nil
}

// GetByID retrieves a counterparty by ID.
func (s *Service) GetByID(ctx context.Context, cpID id.ID) (*Counterparty, error) {
	return s.repo.GetByID(ctx, cpID)
}

// GetByAccountNo retrieves a counterparty by its account number.
func (s *Service) GetByAccountNo(ctx context.Context, accountNo string) (*Counterparty, error) {
	return s.repo.GetByAccountNo(ctx, accountNo)
}

// Update modifies display fields. Code and account number are immutable:
// ledger sub-account codes are derived from them.
func (s *Service) Update(ctx context.Context, cp *Counterparty) error {
	if err := cp.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, cp.ID)
	if err != nil {
		return err
	}
	if existing.Code != cp.Code {
		return apperror.NewValidation("counterparty code is immutable").
			WithDetail("field", "code")
	}
	if existing.AccountNo != cp.AccountNo {
		return apperror.NewValidation("account number is immutable").
			WithDetail("field", "accountNo")
	}

	return s.repo.Update(ctx, cp)
}

// Delete soft-deletes a counterparty. Ledger entries referencing its
// sub-accounts remain; the directory account is never removed.
func (s *Service) Delete(ctx context.Context, cpID id.ID) error {
	return s.repo.Delete(ctx, cpID)
}

// List retrieves counterparties with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Counterparty], error) {
	return s.repo.List(ctx, filter)
}

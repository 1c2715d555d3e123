// Package sequence provides the PostgreSQL implementation of atomic document
// numbering. It implements the core/sequence.Generator interface.
package sequence

import (
	"context"
	"fmt"
	"time"

	coreseq "retailcore/internal/core/sequence"
	"retailcore/internal/infrastructure/storage/postgres"
)

// Source yields the database handle for the current context, joining an
// open transaction when one is present. *postgres.TxManager satisfies it.
type Source interface {
	GetQuerier(ctx context.Context) postgres.Querier
}

// Service allocates sequence values from the sys_sequences counter table.
//
// Allocation is a single atomic upsert: concurrent callers for the same
// scope serialize on the row lock and each receives a distinct, strictly
// increasing value. There is no read-then-increment window, which is what
// makes duplicate numbers impossible by construction.
type Service struct {
	db Source
}

// Ensure compile-time interface compliance.
var _ coreseq.Generator = (*Service)(nil)

// New creates a sequence service.
func New(db Source) *Service {
	return &Service{db: db}
}

// Next allocates and formats the next number for the scope.
func (s *Service) Next(ctx context.Context, cfg coreseq.Config, period time.Time) (string, error) {
	value, err := s.NextValue(ctx, cfg, period)
	if err != nil {
		return "", err
	}
	return cfg.Format(period, value), nil
}

// NextValue allocates the next raw counter value.
//
// The upsert seeds a fresh scope at Start+1 and increments an existing one,
// all in one statement with RETURNING. Run inside the caller's transaction
// the allocation commits or rolls back together with the document insert.
func (s *Service) NextValue(ctx context.Context, cfg coreseq.Config, period time.Time) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("sequence service is not initialized")
	}

	scope := cfg.Scope(period)
	var value int64
	err := s.db.GetQuerier(ctx).QueryRow(ctx, `
        INSERT INTO sys_sequences (scope, current_val)
        VALUES ($1, $2 + 1)
        ON CONFLICT (scope) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, scope, cfg.Start).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next value for scope %s: %w", scope, err)
	}
	return value, nil
}

// SetNextValue seeds the counter so the next allocation returns value+1.
// Intended for migrations from legacy numbering.
func (s *Service) SetNextValue(ctx context.Context, cfg coreseq.Config, period time.Time, value int64) error {
	scope := cfg.Scope(period)
	var result int64
	err := s.db.GetQuerier(ctx).QueryRow(ctx, `
        INSERT INTO sys_sequences (scope, current_val)
        VALUES ($1, $2)
        ON CONFLICT (scope) DO UPDATE SET current_val = $2
        RETURNING current_val
	`, scope, value).Scan(&result)
	if err != nil {
		return fmt.Errorf("set value for scope %s: %w", scope, err)
	}
	return nil
}

// Package sequence provides domain contracts for atomic document numbering.
package sequence

import (
	"context"
	"sync"
	"time"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies. When no override
// funcs are set it behaves as an in-memory counter per scope.
type MockGenerator struct {
	NextFunc         func(ctx context.Context, cfg Config, period time.Time) (string, error)
	NextValueFunc    func(ctx context.Context, cfg Config, period time.Time) (int64, error)
	SetNextValueFunc func(ctx context.Context, cfg Config, period time.Time, value int64) error

	mu       sync.Mutex
	counters map[string]int64
}

// Next implements Generator.
func (m *MockGenerator) Next(ctx context.Context, cfg Config, period time.Time) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, cfg, period)
	}
	v, err := m.NextValue(ctx, cfg, period)
	if err != nil {
		return "", err
	}
	return cfg.Format(period, v), nil
}

// NextValue implements Generator.
func (m *MockGenerator) NextValue(ctx context.Context, cfg Config, period time.Time) (int64, error) {
	if m.NextValueFunc != nil {
		return m.NextValueFunc(ctx, cfg, period)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	scope := cfg.Scope(period)
	if _, ok := m.counters[scope]; !ok {
		m.counters[scope] = cfg.Start
	}
	m.counters[scope]++
	return m.counters[scope], nil
}

// SetNextValue implements Generator.
func (m *MockGenerator) SetNextValue(ctx context.Context, cfg Config, period time.Time, value int64) error {
	if m.SetNextValueFunc != nil {
		return m.SetNextValueFunc(ctx, cfg, period, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	m.counters[cfg.Scope(period)] = value
	return nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)

// Package sequence provides domain contracts for atomic document numbering.
// Implementations live in infrastructure layer.
package sequence

import (
	"context"
	"time"
)

// Generator allocates sequential document numbers.
// This is the domain contract - implementations live in infrastructure layer.
//
// Allocation is atomic: two concurrent callers on the same scope never
// receive the same value, and every formatted number is unique per scope.
type Generator interface {
	// Next allocates and formats the next number for the scope described
	// by cfg, using period to resolve date-based scope segments.
	// Pattern examples: INV-20251204-0001, QN-2025-00001.
	Next(ctx context.Context, cfg Config, period time.Time) (string, error)

	// NextValue allocates the next raw counter value without formatting.
	// Used for numeric account assignment (customer/supplier numbers).
	NextValue(ctx context.Context, cfg Config, period time.Time) (int64, error)

	// SetNextValue seeds the counter so the next allocation returns value+1.
	// Intended for migrations from legacy numbering.
	SetNextValue(ctx context.Context, cfg Config, period time.Time, value int64) error
}

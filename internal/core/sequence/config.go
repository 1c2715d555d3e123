// Package sequence provides domain contracts for atomic document numbering.
package sequence

import (
	"fmt"
	"strings"
	"time"
)

// ResetPeriod controls when the counter restarts from Start+1.
// A restart is purely a scope change; old scopes keep their counters.
type ResetPeriod string

const (
	// ResetDaily scopes the counter per calendar day (invoice style).
	ResetDaily ResetPeriod = "day"

	// ResetYearly scopes the counter per calendar year.
	ResetYearly ResetPeriod = "year"

	// ResetNever keeps a single counter for the prefix.
	ResetNever ResetPeriod = "never"
)

// Config holds numbering configuration for one document family.
type Config struct {
	// Prefix added to all numbers (e.g., "INV", "QN")
	Prefix string

	// Reset controls the counter scope period
	Reset ResetPeriod

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// Start is the value before the first allocation; the first number
	// issued is Start+1. Zero for ordinary document numbering.
	Start int64

	// Bare skips formatting entirely; callers use the raw counter value.
	// Used for counterparty account number bands.
	Bare bool
}

// DefaultConfig returns yearly-reset numbering with a 5-digit pad.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		Reset:    ResetYearly,
		PadWidth: 5,
	}
}

// DailyConfig returns daily-reset numbering with a 4-digit pad
// (INV-20251204-0001 style).
func DailyConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		Reset:    ResetDaily,
		PadWidth: 4,
	}
}

// Scope returns the counter key for this config at the given period.
// Scope identity is what makes resets work: a new day or year yields a
// new key, and the old counter is simply never touched again.
func (c Config) Scope(period time.Time) string {
	switch c.Reset {
	case ResetDaily:
		return fmt.Sprintf("%s-%s", c.Prefix, period.Format("20060102"))
	case ResetYearly:
		return fmt.Sprintf("%s-%d", c.Prefix, period.Year())
	default:
		return c.Prefix
	}
}

// Format renders an allocated counter value as a document number.
func (c Config) Format(period time.Time, value int64) string {
	if c.Bare {
		return fmt.Sprintf("%d", value)
	}

	pad := c.PadWidth
	if pad <= 0 {
		pad = 5
	}

	var b strings.Builder
	b.WriteString(c.Prefix)
	switch c.Reset {
	case ResetDaily:
		b.WriteString("-")
		b.WriteString(period.Format("20060102"))
	case ResetYearly:
		b.WriteString("-")
		b.WriteString(fmt.Sprintf("%d", period.Year()))
	}
	b.WriteString("-")
	b.WriteString(fmt.Sprintf("%0*d", pad, value))
	return b.String()
}

package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Scope(t *testing.T) {
	dec4 := time.Date(2025, 12, 4, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cfg    Config
		period time.Time
		want   string
	}{
		{"daily", DailyConfig("INV"), dec4, "INV-20251204"},
		{"yearly", DefaultConfig("QN"), dec4, "QN-2025"},
		{"never", Config{Prefix: "CUST", Reset: ResetNever}, dec4, "CUST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Scope(tt.period))
		})
	}
}

func TestConfig_Scope_DailyRollover(t *testing.T) {
	cfg := DailyConfig("INV")
	day1 := time.Date(2025, 12, 4, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2025, 12, 5, 0, 1, 0, 0, time.UTC)

	assert.NotEqual(t, cfg.Scope(day1), cfg.Scope(day2))
}

func TestConfig_Format(t *testing.T) {
	dec4 := time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		cfg   Config
		value int64
		want  string
	}{
		{"daily invoice", DailyConfig("INV"), 1, "INV-20251204-0001"},
		{"yearly quotation", DefaultConfig("QN"), 1, "QN-2025-00001"},
		{"yearly purchase", DefaultConfig("PO"), 42, "PO-2025-00042"},
		{"never reset", Config{Prefix: "GRN", Reset: ResetNever, PadWidth: 5}, 7, "GRN-00007"},
		{"bare", Config{Prefix: "CUST", Reset: ResetNever, Bare: true}, 1000, "1000"},
		{"pad overflow keeps digits", DailyConfig("INV"), 123456, "INV-20251204-123456"},
		{"default pad", Config{Prefix: "X", Reset: ResetNever}, 3, "X-00003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Format(dec4, tt.value))
		})
	}
}

func TestMockGenerator_SequentialPerScope(t *testing.T) {
	gen := &MockGenerator{}
	ctx := t.Context()
	dec4 := time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC)

	first, err := gen.Next(ctx, DailyConfig("INV"), dec4)
	assert.NoError(t, err)
	second, err := gen.Next(ctx, DailyConfig("INV"), dec4)
	assert.NoError(t, err)

	assert.Equal(t, "INV-20251204-0001", first)
	assert.Equal(t, "INV-20251204-0002", second)
}

func TestMockGenerator_StartBand(t *testing.T) {
	gen := &MockGenerator{}
	ctx := t.Context()
	now := time.Now()

	cfg := Config{Prefix: "CUST", Reset: ResetNever, Start: 999, Bare: true}
	v, err := gen.NextValue(ctx, cfg, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), v)
}

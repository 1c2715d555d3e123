package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreseq "retailcore/internal/core/sequence"
	"retailcore/internal/infrastructure/storage/postgres"
)

// memQuerier emulates the sys_sequences upsert against an in-memory map.
type memQuerier struct {
	counters map[string]int64
	failWith error
	lastSQL  string
}

func newMemQuerier() *memQuerier {
	return &memQuerier{counters: make(map[string]int64)}
}

func (m *memQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func (m *memQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (m *memQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.lastSQL = sql
	if m.failWith != nil {
		return errRow{err: m.failWith}
	}

	scope := args[0].(string)
	arg := args[1].(int64)

	// Distinguish allocate from seed by the upsert's conflict action.
	if cur, ok := m.counters[scope]; ok {
		if isSeed(sql) {
			m.counters[scope] = arg
		} else {
			m.counters[scope] = cur + 1
		}
	} else {
		if isSeed(sql) {
			m.counters[scope] = arg
		} else {
			m.counters[scope] = arg + 1
		}
	}
	return valueRow{value: m.counters[scope]}
}

func isSeed(sql string) bool {
	return !strings.Contains(sql, "current_val + 1")
}

type valueRow struct{ value int64 }

func (r valueRow) Scan(dest ...any) error {
	if len(dest) != 1 {
		return fmt.Errorf("expected 1 destination, got %d", len(dest))
	}
	p, ok := dest[0].(*int64)
	if !ok {
		return fmt.Errorf("expected *int64 destination")
	}
	*p = r.value
	return nil
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

type memSource struct{ q *memQuerier }

func (s memSource) GetQuerier(ctx context.Context) postgres.Querier { return s.q }

func TestService_NextValue_Sequential(t *testing.T) {
	q := newMemQuerier()
	svc := New(memSource{q: q})
	cfg := coreseq.DefaultConfig("INV")
	period := time.Date(2025, 12, 4, 10, 0, 0, 0, time.UTC)

	for want := int64(1); want <= 5; want++ {
		got, err := svc.NextValue(t.Context(), cfg, period)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestService_Next_Formats(t *testing.T) {
	q := newMemQuerier()
	svc := New(memSource{q: q})
	period := time.Date(2025, 12, 4, 10, 0, 0, 0, time.UTC)

	number, err := svc.Next(t.Context(), coreseq.DailyConfig("INV"), period)
	require.NoError(t, err)
	assert.Equal(t, "INV-20251204-0001", number)

	number, err = svc.Next(t.Context(), coreseq.DefaultConfig("QN"), period)
	require.NoError(t, err)
	assert.Equal(t, "QN-2025-00001", number)
}

func TestService_NextValue_ScopeIsolation(t *testing.T) {
	q := newMemQuerier()
	svc := New(memSource{q: q})
	day1 := time.Date(2025, 12, 4, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2025, 12, 5, 0, 1, 0, 0, time.UTC)
	cfg := coreseq.DailyConfig("INV")

	v, err := svc.NextValue(t.Context(), cfg, day1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = svc.NextValue(t.Context(), cfg, day2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "new day starts a fresh counter")

	v, err = svc.NextValue(t.Context(), cfg, day1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v, "old day counter is untouched")
}

func TestService_NextValue_HonorsStart(t *testing.T) {
	q := newMemQuerier()
	svc := New(memSource{q: q})
	cfg := coreseq.Config{Prefix: "ACCT.CUSTOMER", Reset: coreseq.ResetNever, Start: 999, Bare: true}

	v, err := svc.NextValue(t.Context(), cfg, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v)

	v, err = svc.NextValue(t.Context(), cfg, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1001), v)
}

func TestService_SetNextValue(t *testing.T) {
	q := newMemQuerier()
	svc := New(memSource{q: q})
	cfg := coreseq.DefaultConfig("PO")
	period := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SetNextValue(t.Context(), cfg, period, 500))

	v, err := svc.NextValue(t.Context(), cfg, period)
	require.NoError(t, err)
	assert.Equal(t, int64(501), v)
}

func TestService_NextValue_QueryError(t *testing.T) {
	q := newMemQuerier()
	q.failWith = errors.New("connection reset")
	svc := New(memSource{q: q})

	_, err := svc.NextValue(t.Context(), coreseq.DefaultConfig("INV"), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INV")
}

package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vitos/bybit_dca_bot/internal/domain"
	"github.com/vitos/bybit_dca_bot/internal/infrastructure/storage"
)

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestConfigRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetConfig(ctx)
	require.ErrorIs(t, err, domain.ErrNoDocument)

	cfg := &domain.StrategyConfig{
		MaxHoldPositions: 0.01,
		MinQty:           0.001,
		LongProfit:       1.5,
		ShortProfit:      1.2,
		LongNextEntry:    2,
		ShortNextEntry:   2.5,
	}
	require.NoError(t, store.SaveConfig(ctx, cfg))

	got, err := store.GetConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestTriggerStateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetTriggerState(ctx)
	require.ErrorIs(t, err, domain.ErrNoDocument)

	state := &domain.TriggerState{LongEnabled: true, ShortEnabled: false}
	require.NoError(t, store.SaveTriggerState(ctx, state))

	got, err := store.GetTriggerState(ctx)
	require.NoError(t, err)
	require.Equal(t, state, got)
}

func TestEntryRecordsOrderedByTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetLastEntryRecord(ctx)
	require.ErrorIs(t, err, domain.ErrNoDocument)

	base := time.Now().Truncate(time.Millisecond)
	first := &domain.EntryRecord{
		Side:       domain.SideBuy,
		EntryOrder: &domain.Order{ID: "entry-1", Side: domain.SideBuy, Price: 49500},
		CloseOrder: &domain.Order{ID: "close-1", Side: domain.SideSell, Price: 50500, ReduceOnly: true},
		Timestamp:  base,
	}
	second := &domain.EntryRecord{
		Side:       domain.SideSell,
		EntryOrder: &domain.Order{ID: "entry-2", Side: domain.SideSell, Price: 50500},
		CloseOrder: &domain.Order{ID: "close-2", Side: domain.SideBuy, Price: 49500, ReduceOnly: true},
		Timestamp:  base.Add(time.Second),
	}
	require.NoError(t, store.AppendEntryRecord(ctx, first))
	require.NoError(t, store.AppendEntryRecord(ctx, second))

	got, err := store.GetLastEntryRecord(ctx)
	require.NoError(t, err)
	require.Equal(t, "entry-2", got.EntryOrder.ID)
	require.Equal(t, domain.SideSell, got.Side)
	require.Nil(t, got.FilledOrder)
}

func TestLatestConfigWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveConfig(ctx, &domain.StrategyConfig{MinQty: 0.001}))
	require.NoError(t, store.SaveConfig(ctx, &domain.StrategyConfig{MinQty: 0.002}))

	got, err := store.GetConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, 0.002, got.MinQty)
}

func TestAppendSetsTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := &domain.EntryRecord{
		Side:       domain.SideBuy,
		EntryOrder: &domain.Order{ID: "entry"},
		CloseOrder: &domain.Order{ID: "close"},
	}
	require.NoError(t, store.AppendEntryRecord(ctx, record))
	require.False(t, record.Timestamp.IsZero())

	_, err := store.GetLastEntryRecord(ctx)
	require.NoError(t, err)
}

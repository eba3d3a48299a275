package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"snipedash/internal/settings"
	"snipedash/internal/store/model"
	"snipedash/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	s, err := NewSqliteStore(filepath.Join(t.TempDir(), "snipedash_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func floatPtr(v float64) *float64 { return &v }

func TestSqliteStoreSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store returns nil document", func(t *testing.T) {
		s := newTestStore(t)
		doc, err := s.GetSettings(ctx)
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("insert assigns id and timestamps", func(t *testing.T) {
		s := newTestStore(t)
		doc := settings.WithDefaults(nil)
		persisted, err := s.UpsertSettings(ctx, doc)
		require.NoError(t, err)
		assert.NotEmpty(t, persisted.ID)
		assert.False(t, persisted.CreatedAt.IsZero())
		assert.False(t, persisted.UpdatedAt.IsZero())
		// 入参不被改写
		assert.Empty(t, doc.ID)
	})

	t.Run("roundtrip preserves all sections", func(t *testing.T) {
		s := newTestStore(t)
		doc := settings.WithDefaults(nil)
		doc.General.WalletAddress = "So1anaWa11et"
		doc.Buy.AllowedDexes = []string{"jupiter"}
		persisted, err := s.UpsertSettings(ctx, doc)
		require.NoError(t, err)

		loaded, err := s.GetSettings(ctx)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, persisted.ID, loaded.ID)
		assert.Equal(t, "So1anaWa11et", loaded.General.WalletAddress)
		assert.Equal(t, []string{"jupiter"}, loaded.Buy.AllowedDexes)
		assert.Equal(t, 20.0, loaded.Sell.TargetProfit)
		assert.Equal(t, 3, loaded.Risk.MaxOpenTrades)
	})

	t.Run("id-less write adopts the existing document", func(t *testing.T) {
		s := newTestStore(t)
		first, err := s.UpsertSettings(ctx, settings.WithDefaults(nil))
		require.NoError(t, err)

		// 内存视图丢失 id 后的保存不得分裂出第二份文档
		fresh := settings.WithDefaults(nil)
		fresh.General.WalletAddress = "So1anaWa11et"
		second, err := s.UpsertSettings(ctx, fresh)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Second)

		var count int64
		require.NoError(t, s.db.Model(&model.SettingsModel{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)

		loaded, err := s.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ID, loaded.ID)
		assert.Equal(t, "So1anaWa11et", loaded.General.WalletAddress)
	})

	t.Run("update by id keeps identity", func(t *testing.T) {
		s := newTestStore(t)
		first, err := s.UpsertSettings(ctx, settings.WithDefaults(nil))
		require.NoError(t, err)

		first.Risk.MaxOpenTrades = 7
		second, err := s.UpsertSettings(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		loaded, err := s.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, loaded.Risk.MaxOpenTrades)
	})
}

func TestSqliteStoreTrades(t *testing.T) {
	ctx := context.Background()

	activeTrade := func(sig string, created time.Time) *types.TradeRecord {
		return &types.TradeRecord{
			TokenAddress:   "TokenAddr" + sig,
			TokenSymbol:    "TKN",
			EntryPrice:     0.001,
			AmountSpent:    0.25,
			BuyTxSignature: sig,
			Status:         types.TradeActive,
			CreatedAt:      created,
		}
	}

	t.Run("history is most recent first", func(t *testing.T) {
		s := newTestStore(t)
		base := time.Now().UTC().Add(-time.Hour)
		require.NoError(t, s.SaveTradeRecord(ctx, activeTrade("sig-old", base)))
		require.NoError(t, s.SaveTradeRecord(ctx, activeTrade("sig-new", base.Add(30*time.Minute))))

		history, err := s.ListTradeHistory(ctx, 0)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "sig-new", history[0].BuyTxSignature)
		assert.Equal(t, "sig-old", history[1].BuyTxSignature)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		s := newTestStore(t)
		base := time.Now().UTC()
		for _, sig := range []string{"a", "b", "c"} {
			require.NoError(t, s.SaveTradeRecord(ctx, activeTrade(sig, base)))
		}
		history, err := s.ListTradeHistory(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("upsert by buy signature transitions to terminal", func(t *testing.T) {
		s := newTestStore(t)
		trade := activeTrade("sig-1", time.Now().UTC())
		require.NoError(t, s.SaveTradeRecord(ctx, trade))

		trade.Status = types.TradeCompleted
		trade.ExitPrice = floatPtr(0.002)
		trade.ProfitLossPct = floatPtr(100.0)
		require.NoError(t, s.SaveTradeRecord(ctx, trade))

		history, err := s.ListTradeHistory(ctx, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, types.TradeCompleted, history[0].Status)
		require.NotNil(t, history[0].ProfitLossPct)
		assert.Equal(t, 100.0, *history[0].ProfitLossPct)
	})

	t.Run("terminal records are immutable", func(t *testing.T) {
		s := newTestStore(t)
		trade := activeTrade("sig-done", time.Now().UTC())
		trade.Status = types.TradeFailed
		require.NoError(t, s.SaveTradeRecord(ctx, trade))

		trade.Status = types.TradeActive
		err := s.SaveTradeRecord(ctx, trade)
		assert.ErrorIs(t, err, ErrTerminalRecord)
	})

	t.Run("missing buy signature rejected", func(t *testing.T) {
		s := newTestStore(t)
		err := s.SaveTradeRecord(ctx, &types.TradeRecord{Status: types.TradeActive})
		assert.Error(t, err)
	})
}

func TestSqliteStoreStats(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store returns nil stats", func(t *testing.T) {
		s := newTestStore(t)
		stats, err := s.GetStats(ctx)
		require.NoError(t, err)
		assert.Nil(t, stats)
	})

	t.Run("upsert overwrites single row", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.UpsertStats(ctx, types.BotStats{TokensFound: 10, TradesMade: 2, ProfitLoss: 1.5}))
		require.NoError(t, s.UpsertStats(ctx, types.BotStats{TokensFound: 12, TradesMade: 3, ProfitLoss: -0.8}))

		stats, err := s.GetStats(ctx)
		require.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, int64(12), stats.TokensFound)
		assert.Equal(t, int64(3), stats.TradesMade)
		assert.Equal(t, -0.8, stats.ProfitLoss)
	})
}

func TestSqliteStoreMarker(t *testing.T) {
	ctx := context.Background()

	t.Run("marker advances with writes", func(t *testing.T) {
		s := newTestStore(t)
		initial, err := s.RecordMarker(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), initial.TradeCount)

		require.NoError(t, s.SaveTradeRecord(ctx, &types.TradeRecord{
			BuyTxSignature: "sig-m1",
			Status:         types.TradeActive,
		}))
		require.NoError(t, s.UpsertStats(ctx, types.BotStats{TradesMade: 1}))

		after, err := s.RecordMarker(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), after.TradeCount)
		assert.NotZero(t, after.LastTradeUpdate)
		assert.NotZero(t, after.StatsUpdate)
		assert.NotEqual(t, initial, after)
	})
}

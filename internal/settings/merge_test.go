package settings

import (
	"encoding/json"
	"testing"

	"snipedash/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSettings(t *testing.T) *types.BotSettings {
	t.Helper()
	doc := WithDefaults(nil)
	doc.ID = "doc-1"
	return doc
}

func sectionJSON(t *testing.T, s *types.BotSettings, section types.Section) string {
	t.Helper()
	doc, err := s.SectionDocument(section)
	require.NoError(t, err)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(raw)
}

func TestMergeSection(t *testing.T) {
	t.Run("patch updates only given fields", func(t *testing.T) {
		current := fullSettings(t)
		merged, err := MergeSection(current, types.SectionBuy, map[string]any{
			"slippage": 2.5,
		})
		require.NoError(t, err)
		assert.Equal(t, 2.5, merged.Buy.Slippage)
		// 未出现在 patch 中的字段保留既有值
		assert.Equal(t, 1000.0, merged.Buy.MinimumLiquidity)
		assert.Equal(t, []string{"jupiter", "raydium"}, merged.Buy.AllowedDexes)
		assert.True(t, merged.Buy.RequireVerifiedContract)
	})

	t.Run("untouched sections survive byte for byte", func(t *testing.T) {
		current := fullSettings(t)
		before := map[types.Section]string{
			types.SectionGeneral: sectionJSON(t, current, types.SectionGeneral),
			types.SectionSell:    sectionJSON(t, current, types.SectionSell),
			types.SectionRisk:    sectionJSON(t, current, types.SectionRisk),
		}
		merged, err := MergeSection(current, types.SectionBuy, map[string]any{
			"minimum_liquidity": 5000.0,
		})
		require.NoError(t, err)
		for section, raw := range before {
			assert.Equal(t, raw, sectionJSON(t, merged, section), "section %s changed", section)
		}
	})

	t.Run("current is not mutated", func(t *testing.T) {
		current := fullSettings(t)
		_, err := MergeSection(current, types.SectionSell, map[string]any{
			"target_profit": 50.0,
		})
		require.NoError(t, err)
		assert.Equal(t, 20.0, current.Sell.TargetProfit)
	})

	t.Run("nil current starts from empty document", func(t *testing.T) {
		merged, err := MergeSection(nil, types.SectionGeneral, map[string]any{
			"rpc_url": "https://rpc.example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, merged.General)
		assert.Equal(t, "https://rpc.example.com", merged.General.RPCURL)
		assert.Nil(t, merged.Buy)
	})

	t.Run("unknown section rejected", func(t *testing.T) {
		_, err := MergeSection(fullSettings(t), types.Section("bogus"), map[string]any{"x": 1})
		assert.ErrorIs(t, err, types.ErrUnknownSection)
	})
}

func TestWithDefaults(t *testing.T) {
	t.Run("fills all sections from nil", func(t *testing.T) {
		doc := WithDefaults(nil)
		require.NotNil(t, doc.General)
		require.NotNil(t, doc.Buy)
		require.NotNil(t, doc.Sell)
		require.NotNil(t, doc.Risk)

		assert.Equal(t, "https://api.mainnet-beta.solana.com", doc.General.RPCURL)
		assert.Empty(t, doc.General.WalletAddress)
		assert.False(t, doc.General.TelegramEnabled)

		assert.Equal(t, 1000.0, doc.Buy.MinimumLiquidity)
		assert.Equal(t, 1.0, doc.Buy.Slippage)
		assert.Equal(t, []string{"jupiter", "raydium"}, doc.Buy.AllowedDexes)
		assert.True(t, doc.Buy.RequireVerifiedContract)
		assert.Equal(t, 0.000005, doc.Buy.MaxPriorityFee)
		assert.True(t, doc.Buy.EnableAntibot)

		assert.Equal(t, 20.0, doc.Sell.TargetProfit)
		assert.Equal(t, 10.0, doc.Sell.StopLoss)
		assert.Equal(t, 60, doc.Sell.MaxHoldingTime)
		assert.False(t, doc.Sell.SellOnVolatilitySpike)

		assert.Equal(t, 5.0, doc.Risk.PositionSizePercentage)
		assert.Equal(t, 3, doc.Risk.MaxOpenTrades)
		assert.Equal(t, 30, doc.Risk.CooldownPeriod)
	})

	t.Run("existing sections kept as-is", func(t *testing.T) {
		partial := &types.BotSettings{
			Sell: &types.SellConditions{TargetProfit: 99, StopLoss: 5, MaxHoldingTime: 10},
		}
		doc := WithDefaults(partial)
		assert.Equal(t, 99.0, doc.Sell.TargetProfit)
		assert.Equal(t, 3, doc.Risk.MaxOpenTrades)
		// 入参不被修改
		assert.Nil(t, partial.Risk)
	})
}

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSection(t *testing.T) {
	cases := map[string]Section{
		"general":         SectionGeneral,
		"buy":             SectionBuy,
		"buy_conditions":  SectionBuy,
		"sell":            SectionSell,
		"sell_conditions": SectionSell,
		"risk":            SectionRisk,
		"risk_control":    SectionRisk,
	}
	for raw, want := range cases {
		got, ok := ParseSection(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseSection("webhooks")
	assert.False(t, ok)
}

func TestParseBotStatus(t *testing.T) {
	got, ok := ParseBotStatus(" Stopped ")
	assert.True(t, ok)
	assert.Equal(t, StatusIdle, got)

	got, ok = ParseBotStatus("RUNNING")
	assert.True(t, ok)
	assert.Equal(t, StatusRunning, got)

	got, ok = ParseBotStatus("rebooting")
	assert.False(t, ok)
	assert.Equal(t, StatusError, got)
}

func TestBotSettingsClone(t *testing.T) {
	orig := &BotSettings{
		ID:      "doc-1",
		General: &GeneralSettings{RPCURL: "https://api.mainnet-beta.solana.com"},
		Buy:     &BuyConditions{AllowedDexes: []string{"raydium", "orca"}},
	}

	clone := orig.Clone()
	clone.General.RPCURL = "https://rpc.local"
	clone.Buy.AllowedDexes[0] = "meteora"
	clone.Sell = &SellConditions{TargetProfit: 50}

	assert.Equal(t, "https://api.mainnet-beta.solana.com", orig.General.RPCURL)
	assert.Equal(t, "raydium", orig.Buy.AllowedDexes[0])
	assert.Nil(t, orig.Sell)

	var nilSettings *BotSettings
	assert.Nil(t, nilSettings.Clone())
}

func TestSectionDocumentRoundtrip(t *testing.T) {
	s := &BotSettings{Risk: &RiskControl{PositionSizePercentage: 7.5, MaxOpenTrades: 2}}

	doc, err := s.SectionDocument(SectionRisk)
	require.NoError(t, err)
	assert.Equal(t, 7.5, doc["position_size_percentage"])
	assert.Equal(t, float64(2), doc["max_open_trades"])

	// 未设置的分组给空对象而不是报错。
	doc, err = s.SectionDocument(SectionBuy)
	require.NoError(t, err)
	assert.Empty(t, doc)

	_, err = s.SectionDocument(Section("webhooks"))
	assert.ErrorIs(t, err, ErrUnknownSection)

	doc = map[string]any{"target_profit": 40.0, "max_holding_time": 600}
	require.NoError(t, s.SetSectionDocument(SectionSell, doc))
	assert.Equal(t, 40.0, s.Sell.TargetProfit)
	assert.Equal(t, 600, s.Sell.MaxHoldingTime)
}

func TestTradeStatusTerminal(t *testing.T) {
	assert.False(t, TradeActive.Terminal())
	assert.True(t, TradeCompleted.Terminal())
	assert.True(t, TradeFailed.Terminal())
}

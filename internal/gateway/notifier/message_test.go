package notifier

import (
	"testing"

	"snipedash/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestFormatBuyAlert(t *testing.T) {
	t.Run("完整字段", func(t *testing.T) {
		msg := FormatBuyAlert(types.TradeRecord{
			TokenAddress:   "So11111111111111111111111111111111111111112",
			TokenName:      "Bonk",
			TokenSymbol:    "BONK",
			EntryPrice:     0.0000245,
			BuyTxSignature: "5KtP9sig",
		})

		assert.Contains(t, msg, "NEW PURCHASE")
		assert.Contains(t, msg, "Bonk (BONK)")
		assert.Contains(t, msg, "So11111111111111111111111111111111111111112")
		assert.Contains(t, msg, "0.0000245 USDC")
		assert.Contains(t, msg, "https://explorer.solana.com/tx/5KtP9sig")
	})

	t.Run("缺名缺签名", func(t *testing.T) {
		msg := FormatBuyAlert(types.TradeRecord{TokenAddress: "abc"})

		assert.Contains(t, msg, "Token: Unknown\n")
		assert.NotContains(t, msg, "explorer.solana.com")
	})
}

func TestFormatSellAlert(t *testing.T) {
	exit := 0.000031
	sig := "9QzSellSig"

	t.Run("盈利", func(t *testing.T) {
		pct := 26.536
		msg := FormatSellAlert(types.TradeRecord{
			TokenAddress:    "abc",
			TokenName:       "Bonk",
			ExitPrice:       &exit,
			ProfitLossPct:   &pct,
			SellTxSignature: &sig,
		})

		assert.Contains(t, msg, "💰 TOKEN SOLD 💰")
		assert.Contains(t, msg, "Profit/Loss: 26.54%")
		assert.Contains(t, msg, "Exit Price: 0.000031 USDC")
		assert.Contains(t, msg, "https://explorer.solana.com/tx/9QzSellSig")
	})

	t.Run("亏损", func(t *testing.T) {
		pct := -12.1
		msg := FormatSellAlert(types.TradeRecord{TokenAddress: "abc", ProfitLossPct: &pct})

		assert.Contains(t, msg, "⚠️ TOKEN SOLD ⚠️")
		assert.Contains(t, msg, "Profit/Loss: -12.1%")
	})

	t.Run("无盈亏数据", func(t *testing.T) {
		msg := FormatSellAlert(types.TradeRecord{TokenAddress: "abc"})

		assert.Contains(t, msg, "⚠️ TOKEN SOLD ⚠️")
		assert.NotContains(t, msg, "Profit/Loss")
		assert.NotContains(t, msg, "Exit Price")
	})
}

func TestFormatStatusAlert(t *testing.T) {
	assert.Equal(t, "🚀 Sniper bot started", FormatStatusAlert(types.StatusRunning, ""))
	assert.Equal(t, "🚀 Sniper bot started", FormatStatusAlert(types.StatusStarting, ""))
	assert.Equal(t, "🛑 Sniper bot stopped", FormatStatusAlert(types.StatusIdle, ""))
	assert.Contains(t, FormatStatusAlert(types.StatusError, "rpc 超时"), "BOT ERROR")
	assert.Contains(t, FormatStatusAlert(types.StatusError, "rpc 超时"), "rpc 超时")
	assert.Contains(t, FormatStatusAlert(types.StatusError, ""), "Bot status: error")
}

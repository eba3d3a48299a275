package notifier

import (
	"fmt"
	"strings"

	"snipedash/internal/types"

	"github.com/shopspring/decimal"
)

const explorerTxBase = "https://explorer.solana.com/tx/"

// FormatBuyAlert 生成建仓推送文本。
func FormatBuyAlert(tr types.TradeRecord) string {
	var b strings.Builder
	b.WriteString("🔥 NEW PURCHASE 🔥\n\n")
	fmt.Fprintf(&b, "Token: %s\n", tokenLabel(tr))
	fmt.Fprintf(&b, "Address: %s\n", tr.TokenAddress)
	fmt.Fprintf(&b, "Price: %s USDC\n", formatPrice(tr.EntryPrice))
	if tr.BuyTxSignature != "" {
		fmt.Fprintf(&b, "\nTx: %s%s", explorerTxBase, tr.BuyTxSignature)
	}
	return b.String()
}

// FormatSellAlert 生成离场推送文本，按盈亏选择图标。
func FormatSellAlert(tr types.TradeRecord) string {
	emoji := "⚠️"
	if tr.ProfitLossPct != nil && *tr.ProfitLossPct > 0 {
		emoji = "💰"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s TOKEN SOLD %s\n\n", emoji, emoji)
	fmt.Fprintf(&b, "Token: %s\n", tokenLabel(tr))
	fmt.Fprintf(&b, "Address: %s\n", tr.TokenAddress)
	if tr.ExitPrice != nil {
		fmt.Fprintf(&b, "Exit Price: %s USDC\n", formatPrice(*tr.ExitPrice))
	}
	if tr.ProfitLossPct != nil {
		fmt.Fprintf(&b, "Profit/Loss: %s%%\n", decimal.NewFromFloat(*tr.ProfitLossPct).Round(2).String())
	}
	if tr.SellTxSignature != nil && *tr.SellTxSignature != "" {
		fmt.Fprintf(&b, "\nTx: %s%s", explorerTxBase, *tr.SellTxSignature)
	}
	return b.String()
}

// FormatStatusAlert 生成启停结果推送文本。
func FormatStatusAlert(status types.BotStatus, failure string) string {
	if failure != "" {
		return fmt.Sprintf("⚠️ BOT ERROR ⚠️\n\n%s", failure)
	}
	switch status {
	case types.StatusRunning, types.StatusStarting:
		return "🚀 Sniper bot started"
	case types.StatusIdle, types.StatusStopping:
		return "🛑 Sniper bot stopped"
	default:
		return fmt.Sprintf("Bot status: %s", status)
	}
}

func tokenLabel(tr types.TradeRecord) string {
	name := tr.TokenName
	if name == "" {
		name = "Unknown"
	}
	if tr.TokenSymbol != "" {
		return fmt.Sprintf("%s (%s)", name, tr.TokenSymbol)
	}
	return name
}

// formatPrice 用 decimal 渲染价格，避免小额 meme 币报价的浮点指数形态。
func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).String()
}

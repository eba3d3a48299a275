package settings

import "snipedash/internal/types"

// 默认值与外部 bot 的出厂配置保持一致，改动需要两侧同步。
const (
	defaultMinimumLiquidity = 1000.0
	defaultSlippage         = 1.0
	defaultMaxPriorityFee   = 0.000005
	defaultTargetProfit     = 20.0
	defaultStopLoss         = 10.0
	defaultMaxHoldingTime   = 60
	defaultPositionSizePct  = 5.0
	defaultMaxOpenTrades    = 3
	defaultCooldownPeriod   = 30
	defaultRPCURL           = "https://api.mainnet-beta.solana.com"
)

func defaultAllowedDexes() []string {
	return []string{"jupiter", "raydium"}
}

// DefaultGeneral 返回 general 分组默认值。
func DefaultGeneral() *types.GeneralSettings {
	return &types.GeneralSettings{
		RPCURL:          defaultRPCURL,
		WalletAddress:   "",
		TelegramEnabled: false,
	}
}

// DefaultBuy 返回 buy_conditions 分组默认值。
func DefaultBuy() *types.BuyConditions {
	return &types.BuyConditions{
		MinimumLiquidity:        defaultMinimumLiquidity,
		Slippage:                defaultSlippage,
		AllowedDexes:            defaultAllowedDexes(),
		RequireVerifiedContract: true,
		MaxPriorityFee:          defaultMaxPriorityFee,
		EnableAntibot:           true,
	}
}

// DefaultSell 返回 sell_conditions 分组默认值。
func DefaultSell() *types.SellConditions {
	return &types.SellConditions{
		TargetProfit:          defaultTargetProfit,
		StopLoss:              defaultStopLoss,
		MaxHoldingTime:        defaultMaxHoldingTime,
		SellOnVolatilitySpike: false,
	}
}

// DefaultRisk 返回 risk_control 分组默认值。
func DefaultRisk() *types.RiskControl {
	return &types.RiskControl{
		PositionSizePercentage: defaultPositionSizePct,
		MaxOpenTrades:          defaultMaxOpenTrades,
		CooldownPeriod:         defaultCooldownPeriod,
	}
}

// WithDefaults 将缺失的分组填充为默认值，已设置的分组原样保留。
// 入参不会被修改。
func WithDefaults(partial *types.BotSettings) *types.BotSettings {
	out := partial.Clone()
	if out == nil {
		out = &types.BotSettings{}
	}
	if out.General == nil {
		out.General = DefaultGeneral()
	}
	if out.Buy == nil {
		out.Buy = DefaultBuy()
	}
	if out.Sell == nil {
		out.Sell = DefaultSell()
	}
	if out.Risk == nil {
		out.Risk = DefaultRisk()
	}
	return out
}

package types

import "time"

// TradeStatus 是单笔交易记录的生命周期状态。
// active 记录只能迁移到 completed 或 failed，且只迁移一次。
type TradeStatus string

const (
	TradeActive    TradeStatus = "active"
	TradeCompleted TradeStatus = "completed"
	TradeFailed    TradeStatus = "failed"
)

func (s TradeStatus) Terminal() bool {
	return s == TradeCompleted || s == TradeFailed
}

// TradeRecord 是外部 bot 写入的一笔建仓记录，dashboard 侧只读。
type TradeRecord struct {
	ID             int64       `json:"id"`
	TokenAddress   string      `json:"token_address"`
	TokenName      string      `json:"token_name"`
	TokenSymbol    string      `json:"token_symbol"`
	EntryPrice     float64     `json:"entry_price"`
	ExitPrice      *float64    `json:"exit_price,omitempty"`
	AmountSpent    float64     `json:"amount_spent"`
	AmountReceived *float64    `json:"amount_received,omitempty"`
	ProfitLossPct  *float64    `json:"profit_loss_pct,omitempty"`
	BuyTxSignature string      `json:"buy_tx_signature"`
	SellTxSignature *string    `json:"sell_tx_signature,omitempty"`
	Status         TradeStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// LiveTrade 是 bot /trades 接口返回的内存态持仓快照（尚未落库）。
type LiveTrade struct {
	TokenAddress string  `json:"token_address"`
	TokenName    string  `json:"token_name"`
	TokenSymbol  string  `json:"token_symbol"`
	EntryPrice   float64 `json:"entry_price"`
	AmountSpent  float64 `json:"amount_spent"`
	Timestamp    float64 `json:"timestamp"`
}

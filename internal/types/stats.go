package types

import (
	"errors"
	"time"
)

// ErrUnknownSection 表示传入了未知的配置分组名。
var ErrUnknownSection = errors.New("unknown settings section")

// BotStats 是外部 bot 整行覆写的聚合统计，dashboard 侧视为只读快照。
type BotStats struct {
	TokensFound int64     `json:"tokens_found"`
	TradesMade  int64     `json:"trades_made"`
	ProfitLoss  float64   `json:"profit_loss"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package model

import (
	"gorm.io/datatypes"
)

// SettingsModel 持久化单份配置文档，四个分组各占一个 JSON 列，
// 分组可独立覆写而不触碰其它列。
type SettingsModel struct {
	ID             string         `gorm:"column:id;primaryKey"`
	General        datatypes.JSON `gorm:"column:general;type:TEXT"`
	BuyConditions  datatypes.JSON `gorm:"column:buy_conditions;type:TEXT"`
	SellConditions datatypes.JSON `gorm:"column:sell_conditions;type:TEXT"`
	RiskControl    datatypes.JSON `gorm:"column:risk_control;type:TEXT"`
	CreatedAtUnix  int64          `gorm:"column:created_at"`
	UpdatedAtUnix  int64          `gorm:"column:updated_at"`
}

func (SettingsModel) TableName() string { return "bot_settings" }

type TradeRecordModel struct {
	ID              int64    `gorm:"column:id;primaryKey"`
	TokenAddress    string   `gorm:"column:token_address;index"`
	TokenName       string   `gorm:"column:token_name"`
	TokenSymbol     string   `gorm:"column:token_symbol"`
	EntryPrice      float64  `gorm:"column:entry_price"`
	ExitPrice       *float64 `gorm:"column:exit_price"`
	AmountSpent     float64  `gorm:"column:amount_spent"`
	AmountReceived  *float64 `gorm:"column:amount_received"`
	ProfitLossPct   *float64 `gorm:"column:profit_loss_pct"`
	BuyTxSignature  string   `gorm:"column:buy_tx_signature;uniqueIndex"`
	SellTxSignature *string  `gorm:"column:sell_tx_signature"`
	Status          string   `gorm:"column:status;index"`
	CreatedAtUnix   int64    `gorm:"column:created_at;index"`
	UpdatedAtUnix   int64    `gorm:"column:updated_at"`
}

func (TradeRecordModel) TableName() string { return "trade_records" }

// BotStatsModel 是单行聚合统计，主键固定为 1，由外部 bot 整行覆写。
type BotStatsModel struct {
	ID            int64   `gorm:"column:id;primaryKey"`
	TokensFound   int64   `gorm:"column:tokens_found"`
	TradesMade    int64   `gorm:"column:trades_made"`
	ProfitLoss    float64 `gorm:"column:profit_loss"`
	UpdatedAtUnix int64   `gorm:"column:updated_at"`
}

func (BotStatsModel) TableName() string { return "bot_stats" }

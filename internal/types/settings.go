package types

import (
	"encoding/json"
	"time"
)

// Section 标识四个可独立更新的配置分组。
type Section string

const (
	SectionGeneral Section = "general"
	SectionBuy     Section = "buy_conditions"
	SectionSell    Section = "sell_conditions"
	SectionRisk    Section = "risk_control"
)

// Sections 按固定顺序列出全部配置分组。
func Sections() []Section {
	return []Section{SectionGeneral, SectionBuy, SectionSell, SectionRisk}
}

// ParseSection 接受分组全名或短名（buy/sell/risk/general）。
func ParseSection(raw string) (Section, bool) {
	switch raw {
	case "general":
		return SectionGeneral, true
	case "buy", "buy_conditions":
		return SectionBuy, true
	case "sell", "sell_conditions":
		return SectionSell, true
	case "risk", "risk_control":
		return SectionRisk, true
	default:
		return "", false
	}
}

// GeneralSettings 对应 bot 的链上与告警接入配置。
type GeneralSettings struct {
	RPCURL          string `json:"rpc_url"`
	WalletAddress   string `json:"wallet_address"`
	TelegramEnabled bool   `json:"telegram_enabled"`
	TelegramToken   string `json:"telegram_token,omitempty"`
	TelegramChatID  string `json:"telegram_chat_id,omitempty"`
}

// BuyConditions 控制建仓过滤条件。
type BuyConditions struct {
	MinimumLiquidity        float64  `json:"minimum_liquidity"`
	Slippage                float64  `json:"slippage"`
	AllowedDexes            []string `json:"allowed_dexes"`
	RequireVerifiedContract bool     `json:"require_verified_contract"`
	MaxPriorityFee          float64  `json:"max_priority_fee"`
	EnableAntibot           bool     `json:"enable_antibot"`
}

// SellConditions 控制离场触发条件。
type SellConditions struct {
	TargetProfit          float64 `json:"target_profit"`
	StopLoss              float64 `json:"stop_loss"`
	MaxHoldingTime        int     `json:"max_holding_time"`
	SellOnVolatilitySpike bool    `json:"sell_on_volatility_spike"`
}

// RiskControl 控制整体风险敞口。
type RiskControl struct {
	PositionSizePercentage float64 `json:"position_size_percentage"`
	MaxOpenTrades          int     `json:"max_open_trades"`
	CooldownPeriod         int     `json:"cooldown_period"`
}

// BotSettings 是单份逻辑配置文档。分组字段为指针：nil 表示该分组尚未设置，
// 持久化前由默认值填充。ID 在首次入库时由存储层分配。
type BotSettings struct {
	ID        string           `json:"id,omitempty"`
	General   *GeneralSettings `json:"general,omitempty"`
	Buy       *BuyConditions   `json:"buy_conditions,omitempty"`
	Sell      *SellConditions  `json:"sell_conditions,omitempty"`
	Risk      *RiskControl     `json:"risk_control,omitempty"`
	CreatedAt time.Time        `json:"created_at,omitempty"`
	UpdatedAt time.Time        `json:"updated_at,omitempty"`
}

// Clone 深拷贝整份设置，切片不共享底层数组。
func (s *BotSettings) Clone() *BotSettings {
	if s == nil {
		return nil
	}
	out := *s
	if s.General != nil {
		g := *s.General
		out.General = &g
	}
	if s.Buy != nil {
		b := *s.Buy
		b.AllowedDexes = append([]string(nil), s.Buy.AllowedDexes...)
		out.Buy = &b
	}
	if s.Sell != nil {
		v := *s.Sell
		out.Sell = &v
	}
	if s.Risk != nil {
		r := *s.Risk
		out.Risk = &r
	}
	return &out
}

// SectionDocument 返回指定分组的 JSON 对象表示，分组未设置时返回空对象。
func (s *BotSettings) SectionDocument(section Section) (map[string]any, error) {
	var src any
	switch section {
	case SectionGeneral:
		src = s.General
	case SectionBuy:
		src = s.Buy
	case SectionSell:
		src = s.Sell
	case SectionRisk:
		src = s.Risk
	default:
		return nil, ErrUnknownSection
	}
	if src == nil || isNilPointer(src) {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SetSectionDocument 用 JSON 对象覆盖指定分组。
func (s *BotSettings) SetSectionDocument(section Section, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	switch section {
	case SectionGeneral:
		target := &GeneralSettings{}
		if err := json.Unmarshal(raw, target); err != nil {
			return err
		}
		s.General = target
	case SectionBuy:
		target := &BuyConditions{}
		if err := json.Unmarshal(raw, target); err != nil {
			return err
		}
		s.Buy = target
	case SectionSell:
		target := &SellConditions{}
		if err := json.Unmarshal(raw, target); err != nil {
			return err
		}
		s.Sell = target
	case SectionRisk:
		target := &RiskControl{}
		if err := json.Unmarshal(raw, target); err != nil {
			return err
		}
		s.Risk = target
	default:
		return ErrUnknownSection
	}
	return nil
}

func isNilPointer(v any) bool {
	switch p := v.(type) {
	case *GeneralSettings:
		return p == nil
	case *BuyConditions:
		return p == nil
	case *SellConditions:
		return p == nil
	case *RiskControl:
		return p == nil
	}
	return false
}

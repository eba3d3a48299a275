package model

import (
	"encoding/json"
	"time"

	"snipedash/internal/types"

	"gorm.io/datatypes"
)

// SettingsToDomain 把存储模型还原为领域类型。
func SettingsToDomain(m *SettingsModel) (*types.BotSettings, error) {
	if m == nil {
		return nil, nil
	}
	out := &types.BotSettings{
		ID:        m.ID,
		CreatedAt: time.Unix(m.CreatedAtUnix, 0).UTC(),
		UpdatedAt: time.Unix(m.UpdatedAtUnix, 0).UTC(),
	}
	if err := decodeSection(m.General, &out.General); err != nil {
		return nil, err
	}
	if err := decodeSection(m.BuyConditions, &out.Buy); err != nil {
		return nil, err
	}
	if err := decodeSection(m.SellConditions, &out.Sell); err != nil {
		return nil, err
	}
	if err := decodeSection(m.RiskControl, &out.Risk); err != nil {
		return nil, err
	}
	return out, nil
}

// SettingsFromDomain 把领域类型编码为存储模型，nil 分组存为空列。
func SettingsFromDomain(doc *types.BotSettings) (*SettingsModel, error) {
	m := &SettingsModel{
		ID:            doc.ID,
		CreatedAtUnix: doc.CreatedAt.Unix(),
		UpdatedAtUnix: doc.UpdatedAt.Unix(),
	}
	var err error
	if m.General, err = encodeSection(doc.General); err != nil {
		return nil, err
	}
	if m.BuyConditions, err = encodeSection(doc.Buy); err != nil {
		return nil, err
	}
	if m.SellConditions, err = encodeSection(doc.Sell); err != nil {
		return nil, err
	}
	if m.RiskControl, err = encodeSection(doc.Risk); err != nil {
		return nil, err
	}
	return m, nil
}

func TradeToDomain(m TradeRecordModel) types.TradeRecord {
	return types.TradeRecord{
		ID:              m.ID,
		TokenAddress:    m.TokenAddress,
		TokenName:       m.TokenName,
		TokenSymbol:     m.TokenSymbol,
		EntryPrice:      m.EntryPrice,
		ExitPrice:       m.ExitPrice,
		AmountSpent:     m.AmountSpent,
		AmountReceived:  m.AmountReceived,
		ProfitLossPct:   m.ProfitLossPct,
		BuyTxSignature:  m.BuyTxSignature,
		SellTxSignature: m.SellTxSignature,
		Status:          types.TradeStatus(m.Status),
		CreatedAt:       time.Unix(m.CreatedAtUnix, 0).UTC(),
		UpdatedAt:       time.Unix(m.UpdatedAtUnix, 0).UTC(),
	}
}

func TradeFromDomain(tr *types.TradeRecord) TradeRecordModel {
	return TradeRecordModel{
		ID:              tr.ID,
		TokenAddress:    tr.TokenAddress,
		TokenName:       tr.TokenName,
		TokenSymbol:     tr.TokenSymbol,
		EntryPrice:      tr.EntryPrice,
		ExitPrice:       tr.ExitPrice,
		AmountSpent:     tr.AmountSpent,
		AmountReceived:  tr.AmountReceived,
		ProfitLossPct:   tr.ProfitLossPct,
		BuyTxSignature:  tr.BuyTxSignature,
		SellTxSignature: tr.SellTxSignature,
		Status:          string(tr.Status),
		CreatedAtUnix:   tr.CreatedAt.Unix(),
		UpdatedAtUnix:   tr.UpdatedAt.Unix(),
	}
}

func StatsToDomain(m *BotStatsModel) *types.BotStats {
	if m == nil {
		return nil
	}
	return &types.BotStats{
		TokensFound: m.TokensFound,
		TradesMade:  m.TradesMade,
		ProfitLoss:  m.ProfitLoss,
		UpdatedAt:   time.Unix(m.UpdatedAtUnix, 0).UTC(),
	}
}

func decodeSection[T any](raw datatypes.JSON, target **T) error {
	if len(raw) == 0 {
		return nil
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	*target = out
	return nil
}

func encodeSection[T any](src *T) (datatypes.JSON, error) {
	if src == nil {
		return nil, nil
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"snipedash/internal/store/model"
	"snipedash/internal/types"

	"gorm.io/gorm"
)

// ErrTerminalRecord 表示试图修改已经结束（completed/failed）的交易记录。
var ErrTerminalRecord = errors.New("trade record is terminal and immutable")

// ListTradeHistory 按创建时间倒序返回交易记录。
func (s *SqliteStore) ListTradeHistory(ctx context.Context, limit int) ([]types.TradeRecord, error) {
	var rows []model.TradeRecordModel
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.TradeRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.TradeToDomain(row))
	}
	return out, nil
}

// SaveTradeRecord 以 buy_tx_signature 为业务主键插入或更新。已进入终态的
// 记录拒绝任何改写；active 记录允许迁移到终态一次。
func (s *SqliteStore) SaveTradeRecord(ctx context.Context, record *types.TradeRecord) error {
	if record == nil {
		return fmt.Errorf("trade record 不能为空")
	}
	if strings.TrimSpace(record.BuyTxSignature) == "" {
		return fmt.Errorf("trade record 缺少 buy_tx_signature")
	}
	now := time.Now().UTC()

	var existing model.TradeRecordModel
	err := s.db.WithContext(ctx).
		Where("buy_tx_signature = ?", record.BuyTxSignature).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		m := model.TradeFromDomain(record)
		m.ID = 0
		if record.CreatedAt.IsZero() {
			m.CreatedAtUnix = now.Unix()
		}
		m.UpdatedAtUnix = now.Unix()
		return s.db.WithContext(ctx).Create(&m).Error
	case err != nil:
		return err
	}

	if types.TradeStatus(existing.Status).Terminal() {
		return ErrTerminalRecord
	}
	m := model.TradeFromDomain(record)
	m.ID = existing.ID
	m.CreatedAtUnix = existing.CreatedAtUnix
	m.UpdatedAtUnix = now.Unix()
	return s.db.WithContext(ctx).Save(&m).Error
}

package sqlite

import (
	"context"
	"errors"
	"time"

	"snipedash/internal/store"
	"snipedash/internal/store/model"
	"snipedash/internal/types"

	"gorm.io/gorm"
)

const statsRowID = 1

// GetStats 返回聚合统计快照，尚无数据时返回 nil。
func (s *SqliteStore) GetStats(ctx context.Context) (*types.BotStats, error) {
	var m model.BotStatsModel
	err := s.db.WithContext(ctx).Where("id = ?", statsRowID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.StatsToDomain(&m), nil
}

// UpsertStats 整行覆写聚合统计（外部 bot 的写入语义）。
func (s *SqliteStore) UpsertStats(ctx context.Context, stats types.BotStats) error {
	updated := stats.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	m := model.BotStatsModel{
		ID:            statsRowID,
		TokensFound:   stats.TokensFound,
		TradesMade:    stats.TradesMade,
		ProfitLoss:    stats.ProfitLoss,
		UpdatedAtUnix: updated.Unix(),
	}
	return s.db.WithContext(ctx).Save(&m).Error
}

// RecordMarker 汇总记录高水位：交易行数、最近一次交易更新、统计更新时间。
func (s *SqliteStore) RecordMarker(ctx context.Context) (store.Marker, error) {
	var marker store.Marker
	if err := s.db.WithContext(ctx).Model(&model.TradeRecordModel{}).Count(&marker.TradeCount).Error; err != nil {
		return store.Marker{}, err
	}
	var lastTrade *int64
	if err := s.db.WithContext(ctx).Model(&model.TradeRecordModel{}).
		Select("MAX(updated_at)").Scan(&lastTrade).Error; err != nil {
		return store.Marker{}, err
	}
	if lastTrade != nil {
		marker.LastTradeUpdate = *lastTrade
	}
	var m model.BotStatsModel
	err := s.db.WithContext(ctx).Where("id = ?", statsRowID).First(&m).Error
	if err == nil {
		marker.StatsUpdate = m.UpdatedAtUnix
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Marker{}, err
	}
	return marker, nil
}

package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snipedash/internal/store/model"
	"snipedash/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetSettings 返回唯一的设置文档，尚未创建时返回 nil。
func (s *SqliteStore) GetSettings(ctx context.Context) (*types.BotSettings, error) {
	var m model.SettingsModel
	err := s.db.WithContext(ctx).Order("created_at ASC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.SettingsToDomain(&m)
}

// UpsertSettings 无 id 时插入（分配 uuid），有 id 时按 id 覆写，
// 返回落库后的文档（含服务端分配的 id 与时间戳）。
// 整个部署只维护一份逻辑文档：无 id 写入在已有文档时沿用其 id 覆写，
// 而不是插入第二行。
func (s *SqliteStore) UpsertSettings(ctx context.Context, doc *types.BotSettings) (*types.BotSettings, error) {
	if doc == nil {
		return nil, fmt.Errorf("settings 不能为空")
	}
	now := time.Now().UTC()
	persisted := doc.Clone()
	persisted.UpdatedAt = now
	if persisted.ID == "" {
		existing, err := s.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != "" {
			persisted.ID = existing.ID
			persisted.CreatedAt = existing.CreatedAt
		} else {
			persisted.ID = uuid.NewString()
			persisted.CreatedAt = now
		}
	}
	m, err := model.SettingsFromDomain(persisted)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}

	var saved model.SettingsModel
	if err := s.db.WithContext(ctx).Where("id = ?", persisted.ID).First(&saved).Error; err != nil {
		return nil, err
	}
	return model.SettingsToDomain(&saved)
}

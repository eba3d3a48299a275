package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"snipedash/internal/store/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// SqliteStore 实现 store.RecordStore。外部 bot 经由 webhook 写入交易与统计，
// dashboard 侧写入仅限 settings 文档。
type SqliteStore struct {
	db *gorm.DB
}

func NewSqliteStore(path string) (*SqliteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return newSqliteStore(db)
}

// NewSqliteStoreFromDB wraps an existing gorm connection (tests use this with
// an in-memory database).
func NewSqliteStoreFromDB(db *gorm.DB) (*SqliteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db 不能为空")
	}
	return newSqliteStore(db)
}

func newSqliteStore(db *gorm.DB) (*SqliteStore, error) {
	models := []interface{}{
		&model.SettingsModel{},
		&model.TradeRecordModel{},
		&model.BotStatsModel{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

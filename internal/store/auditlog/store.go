// Package auditlog 用独立的 SQLite 文件持久化会话通知流，
// 进程重启后控制器可以回放最近的事件。
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"snipedash/internal/session"

	_ "modernc.org/sqlite"
)

// NotificationLogStore 管理通知日志，方便启停/告警事件的事后排查。
type NotificationLogStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewNotificationLogStore 初始化 SQLite 存储。
func NewNotificationLogStore(path string) (*NotificationLogStore, error) {
	if path == "" {
		return nil, fmt.Errorf("notification log path 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := ensureNotificationSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &NotificationLogStore{db: db}, nil
}

func ensureNotificationSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notification_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			message TEXT NOT NULL,
			at INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_notification_log_at_id ON notification_log(at DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭底层 DB。
func (s *NotificationLogStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Append 写入一条通知。
func (s *NotificationLogStore) Append(ctx context.Context, n session.Notification) error {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return fmt.Errorf("notification log store 未初始化")
	}
	at := n.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO notification_log (kind, message, at, created_at) VALUES (?, ?, ?, ?)`,
		string(n.Kind), n.Message, at.UnixMilli(), time.Now().UnixMilli())
	return err
}

// Recent 返回最近 limit 条通知，按时间正序排列。
func (s *NotificationLogStore) Recent(ctx context.Context, limit int) ([]session.Notification, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("notification log store 未初始化")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx,
		`SELECT kind, message, at FROM notification_log ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []session.Notification
	for rows.Next() {
		var kind, message string
		var at int64
		if err := rows.Scan(&kind, &message, &at); err != nil {
			return nil, err
		}
		list = append(list, session.Notification{
			Kind:    session.NoteKind(kind),
			Message: message,
			At:      time.UnixMilli(at),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// 查询按时间倒序取最近 N 条，对外翻转成正序。
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

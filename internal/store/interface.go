package store

import (
	"context"

	"snipedash/internal/types"
)

// Marker 是记录变更的高水位标记，用于粗粒度的"有变化"探测。
type Marker struct {
	TradeCount      int64
	LastTradeUpdate int64
	StatsUpdate     int64
}

// RecordStore is the entry point for persisted settings, trade records and
// aggregate stats. Settings mutate only through UpsertSettings; trade records
// and stats are written on behalf of the external bot (webhook ingest) and are
// read-only for the dashboard view.
type RecordStore interface {
	// GetSettings returns the settings document, nil when none exists yet.
	GetSettings(ctx context.Context) (*types.BotSettings, error)
	// UpsertSettings inserts (assigning an id) or updates by id, and returns
	// the persisted document including server-assigned fields.
	UpsertSettings(ctx context.Context, doc *types.BotSettings) (*types.BotSettings, error)

	// ListTradeHistory returns trade records most-recent-first by creation
	// time. limit <= 0 means no limit.
	ListTradeHistory(ctx context.Context, limit int) ([]types.TradeRecord, error)
	// SaveTradeRecord inserts or updates a record keyed by buy tx signature.
	// Records already in a terminal status are immutable.
	SaveTradeRecord(ctx context.Context, record *types.TradeRecord) error

	// GetStats returns the aggregate stats row, nil when none exists yet.
	GetStats(ctx context.Context) (*types.BotStats, error)
	// UpsertStats overwrites the single aggregate stats row wholesale.
	UpsertStats(ctx context.Context, stats types.BotStats) error

	// RecordMarker returns the current change high-water marks.
	RecordMarker(ctx context.Context) (Marker, error)

	// Close closes the store connection.
	Close() error
}

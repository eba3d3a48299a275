package app

import (
	"context"
	"testing"
	"time"

	"snipedash/internal/config"
	"snipedash/internal/events"
	"snipedash/internal/store"
	"snipedash/internal/types"

	"github.com/stretchr/testify/assert"
)

type stubStatusSource struct{}

func (stubStatusSource) GetStatus(ctx context.Context) (types.BotStatus, error) {
	return types.StatusIdle, nil
}

type stubMarkerSource struct{}

func (stubMarkerSource) RecordMarker(ctx context.Context) (store.Marker, error) {
	return store.Marker{}, nil
}

func TestReloadGuard(t *testing.T) {
	t.Run("late reload after shutdown is dropped", func(t *testing.T) {
		// watcher 为 nil：回调若越过守卫会空指针崩溃
		a := &App{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		guard := a.reloadGuard(ctx)
		assert.NotPanics(t, func() { guard(config.Default()) })
	})

	t.Run("live context applies the reload", func(t *testing.T) {
		watcher := events.NewWatcher(stubStatusSource{}, stubMarkerSource{}, events.NewBroker(),
			3*time.Second, 5*time.Second)
		a := &App{watcher: watcher}

		guard := a.reloadGuard(context.Background())
		cfg := config.Default()
		cfg.Watch.StatusIntervalSeconds = 9
		assert.NotPanics(t, func() { guard(cfg) })
	})

	t.Run("nil config is ignored", func(t *testing.T) {
		a := &App{}
		guard := a.reloadGuard(context.Background())
		assert.NotPanics(t, func() { guard(nil) })
	})
}

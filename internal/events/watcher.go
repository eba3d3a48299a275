package events

import (
	"context"
	"sync"
	"time"

	"snipedash/internal/logger"
	"snipedash/internal/store"
	"snipedash/internal/types"

	"golang.org/x/sync/errgroup"
)

// StatusSource 是 watcher 对 bot 状态接口的最小依赖。
type StatusSource interface {
	GetStatus(ctx context.Context) (types.BotStatus, error)
}

// MarkerSource 是 watcher 对记录存储的最小依赖。
type MarkerSource interface {
	RecordMarker(ctx context.Context) (store.Marker, error)
}

// Watcher 轮询 bot 状态与存储高水位，把变化翻译成广播事件。
// bot 的控制接口只有 REST，没有服务端推送；轮询是 channel 语义的
// 具体实现，漏报由订阅方的全量刷新兜底。
type Watcher struct {
	status StatusSource
	marker MarkerSource
	broker *Broker

	mu             sync.Mutex
	statusInterval time.Duration
	recordInterval time.Duration

	lastStatus   types.BotStatus
	statusPrimed bool
	lastMarker   store.Marker
	markerPrimed bool
}

func NewWatcher(status StatusSource, marker MarkerSource, broker *Broker, statusEvery, recordsEvery time.Duration) *Watcher {
	if statusEvery <= 0 {
		statusEvery = 3 * time.Second
	}
	if recordsEvery <= 0 {
		recordsEvery = 5 * time.Second
	}
	return &Watcher{
		status:         status,
		marker:         marker,
		broker:         broker,
		statusInterval: statusEvery,
		recordInterval: recordsEvery,
	}
}

// SetIntervals 热更新轮询间隔（配置 reload 时调用），下一个周期生效。
func (w *Watcher) SetIntervals(statusEvery, recordsEvery time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if statusEvery > 0 {
		w.statusInterval = statusEvery
	}
	if recordsEvery > 0 {
		w.recordInterval = recordsEvery
	}
}

func (w *Watcher) intervals() (time.Duration, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statusInterval, w.recordInterval
}

// Run 启动两条轮询循环，直到 ctx 取消。
func (w *Watcher) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return w.statusLoop(ctx) })
	group.Go(func() error { return w.recordsLoop(ctx) })
	return group.Wait()
}

func (w *Watcher) statusLoop(ctx context.Context) error {
	for {
		every, _ := w.intervals()
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(every):
		}
		w.pollStatus(ctx)
	}
}

func (w *Watcher) recordsLoop(ctx context.Context) error {
	for {
		_, every := w.intervals()
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(every):
		}
		w.pollRecords(ctx)
	}
}

func (w *Watcher) pollStatus(ctx context.Context) {
	status, err := w.status.GetStatus(ctx)
	if err != nil {
		logger.Debugf("status poll failed: %v", err)
		// GetStatus 失败已收敛为 error 状态，照常走变更判断。
	}
	w.mu.Lock()
	changed := w.statusPrimed && status != w.lastStatus
	w.statusPrimed = true
	w.lastStatus = status
	w.mu.Unlock()
	if changed {
		w.broker.PublishStatus(status)
	}
}

func (w *Watcher) pollRecords(ctx context.Context) {
	marker, err := w.marker.RecordMarker(ctx)
	if err != nil {
		logger.Debugf("record marker poll failed: %v", err)
		return
	}
	w.mu.Lock()
	changed := w.markerPrimed && marker != w.lastMarker
	w.markerPrimed = true
	w.lastMarker = marker
	w.mu.Unlock()
	if changed {
		w.broker.PublishRecords()
	}
}

// Package events 实现 dashboard 内部的状态/记录变更广播。
// 投递是尽力而为、至多一次：慢订阅者丢事件而不是阻塞发布方，
// 漏掉的事件由下一次全量刷新兜底。
package events

import (
	"sync"

	"snipedash/internal/types"
)

// StatusHandler 在 bot 状态变化时回调。
type StatusHandler func(status types.BotStatus)

// RecordsHandler 在交易记录或统计可能变化时回调（粗信号，不含 diff）。
type RecordsHandler func()

type subscriber struct {
	onStatus  StatusHandler
	onRecords RecordsHandler
}

// Broker 把两类事件扇出给所有订阅者。回调在发布方的 goroutine 上
// 同步执行，订阅方需要自行保证回调轻量。
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscriber
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]subscriber)}
}

// Subscribe 注册订阅者，返回取消订阅函数（幂等）。
func (b *Broker) Subscribe(onStatus func(types.BotStatus), onRecords func()) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscriber{onStatus: onStatus, onRecords: onRecords}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// PublishStatus 广播状态变更。
func (b *Broker) PublishStatus(status types.BotStatus) {
	for _, sub := range b.snapshot() {
		if sub.onStatus != nil {
			sub.onStatus(status)
		}
	}
}

// PublishRecords 广播记录变更信号。
func (b *Broker) PublishRecords() {
	for _, sub := range b.snapshot() {
		if sub.onRecords != nil {
			sub.onRecords()
		}
	}
}

func (b *Broker) snapshot() []subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		out = append(out, sub)
	}
	return out
}

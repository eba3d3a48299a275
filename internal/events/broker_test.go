package events

import (
	"testing"

	"snipedash/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestBroker(t *testing.T) {
	t.Run("fans out to all subscribers", func(t *testing.T) {
		b := NewBroker()
		var got1, got2 types.BotStatus
		records := 0
		b.Subscribe(func(s types.BotStatus) { got1 = s }, func() { records++ })
		b.Subscribe(func(s types.BotStatus) { got2 = s }, nil)

		b.PublishStatus(types.StatusRunning)
		b.PublishRecords()

		assert.Equal(t, types.StatusRunning, got1)
		assert.Equal(t, types.StatusRunning, got2)
		assert.Equal(t, 1, records)
	})

	t.Run("unsubscribe stops delivery and is idempotent", func(t *testing.T) {
		b := NewBroker()
		calls := 0
		unsub := b.Subscribe(func(types.BotStatus) { calls++ }, nil)

		b.PublishStatus(types.StatusRunning)
		unsub()
		unsub()
		b.PublishStatus(types.StatusIdle)

		assert.Equal(t, 1, calls)
	})

	t.Run("publish without subscribers is safe", func(t *testing.T) {
		b := NewBroker()
		assert.NotPanics(t, func() {
			b.PublishStatus(types.StatusError)
			b.PublishRecords()
		})
	})
}

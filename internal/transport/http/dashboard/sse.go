package dashhttp

import (
	"io"
	"net/http"
	"time"

	"snipedash/internal/logger"
	"snipedash/internal/types"

	"github.com/gin-gonic/gin"
)

type sseEvent struct {
	name string
	data any
}

const sseHeartbeat = 25 * time.Second

// handleEvents 以 SSE 推送状态与记录变更。事件尽力而为、至多一次：
// 客户端消费不过来时直接丢弃，不阻塞广播方。
func (r *Router) handleEvents(c *gin.Context) {
	ch := make(chan sseEvent, 16)
	push := func(ev sseEvent) {
		select {
		case ch <- ev:
		default:
			// 慢客户端丢事件，断线后靠 /api/view 全量对齐。
		}
	}
	unsubscribe := r.broker.Subscribe(
		func(status types.BotStatus) {
			push(sseEvent{name: "status_changed", data: gin.H{"status": status}})
		},
		func() {
			push(sseEvent{name: "records_changed", data: gin.H{"at": time.Now().Unix()}})
		},
	)
	defer unsubscribe()

	logger.Debugf("[sse] client connected ip=%s", c.ClientIP())
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()
	ctx := c.Request.Context()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			logger.Debugf("[sse] client disconnected ip=%s", c.ClientIP())
			return false
		case ev := <-ch:
			c.SSEvent(ev.name, ev.data)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"at": time.Now().Unix()})
			return true
		}
	})
}

package dashhttp

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"snipedash/internal/events"
	"snipedash/internal/logger"
	"snipedash/internal/session"
	"snipedash/internal/types"

	"github.com/gin-gonic/gin"
)

// SessionController 是展示层看到的会话控制面，由 session.Controller 实现。
type SessionController interface {
	Start(ctx context.Context) session.CommandResult
	Stop(ctx context.Context) session.CommandResult
	SaveSection(ctx context.Context, section string, patch map[string]any) session.SaveResult
	View() session.View
	Notifications() []session.Notification
}

// LiveTradeReader 透传 bot 的内存态持仓查询。
type LiveTradeReader interface {
	LiveTrades(ctx context.Context) ([]types.LiveTrade, error)
}

// RecordIngestor 接收 bot 推送的成交与统计写入。
type RecordIngestor interface {
	SaveTradeRecord(ctx context.Context, record *types.TradeRecord) error
	UpsertStats(ctx context.Context, stats types.BotStats) error
}

// Router 暴露 /api 下的 dashboard 接口。
type Router struct {
	controller SessionController
	bot        LiveTradeReader
	records    RecordIngestor
	broker     *events.Broker
}

// NewRouter 构造 dashboard router。bot、records 与 broker 允许为 nil，
// 对应的接口返回 503。
func NewRouter(controller SessionController, bot LiveTradeReader, records RecordIngestor, broker *events.Broker) *Router {
	return &Router{controller: controller, bot: bot, records: records, broker: broker}
}

// Register 将 dashboard 路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/view", r.handleView)
	group.GET("/notifications", r.handleNotifications)
	group.POST("/bot/start", r.handleStart)
	group.POST("/bot/stop", r.handleStop)
	group.GET("/settings", r.handleSettings)
	group.GET("/settings/:section", r.handleSettingsSection)
	group.PUT("/settings/:section", r.handleSaveSection)
	group.GET("/trades", r.handleTrades)
	group.GET("/trades/live", r.handleLiveTrades)
	group.GET("/stats", r.handleStats)
	if r.records != nil {
		group.POST("/ingest/trade", r.handleIngestTrade)
		group.POST("/ingest/stats", r.handleIngestStats)
	}
	if r.broker != nil {
		group.GET("/events", r.handleEvents)
	}
}

func (r *Router) handleView(c *gin.Context) {
	c.JSON(http.StatusOK, r.controller.View())
}

func (r *Router) handleNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": r.controller.Notifications()})
}

func (r *Router) handleStart(c *gin.Context) {
	r.handleCommand(c, session.OpStart)
}

func (r *Router) handleStop(c *gin.Context) {
	r.handleCommand(c, session.OpStop)
}

func (r *Router) handleCommand(c *gin.Context, op session.CommandOp) {
	var result session.CommandResult
	if op == session.OpStart {
		result = r.controller.Start(c.Request.Context())
	} else {
		result = r.controller.Stop(c.Request.Context())
	}
	switch {
	case result.Skipped:
		// 命令在途，重复点击压制为 no-op。
		logger.Debugf("[api] bot %s skipped, command in flight ip=%s", op, c.ClientIP())
		c.JSON(http.StatusOK, result)
	case !result.Ok:
		logger.Errorf("[api] bot %s failed ip=%s err=%s", op, c.ClientIP(), result.Message)
		c.JSON(http.StatusBadGateway, result)
	default:
		logger.Infof("[api] bot %s ok ip=%s status=%s", op, c.ClientIP(), result.Status)
		c.JSON(http.StatusOK, result)
	}
}

func (r *Router) handleSettings(c *gin.Context) {
	view := r.controller.View()
	if view.Settings == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚未保存任何设置"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": view.Settings})
}

func (r *Router) handleSettingsSection(c *gin.Context) {
	section, ok := types.ParseSection(c.Param("section"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown settings section"})
		return
	}
	view := r.controller.View()
	if view.Settings == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚未保存任何设置"})
		return
	}
	doc, err := view.Settings.SectionDocument(section)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "settings section not set"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": section, "values": doc})
}

func (r *Router) handleSaveSection(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		logger.Errorf("[api] settings save bind failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result := r.controller.SaveSection(c.Request.Context(), c.Param("section"), patch)
	if result.Ok {
		logger.Infof("[api] settings saved ip=%s section=%s", c.ClientIP(), result.Section)
		c.JSON(http.StatusOK, result)
		return
	}
	switch {
	case session.IsValidation(result.Err):
		logger.Warnf("[api] settings save rejected ip=%s section=%s err=%s", c.ClientIP(), result.Section, result.Message)
		c.JSON(http.StatusBadRequest, result)
	case session.IsNotFound(result.Err):
		c.JSON(http.StatusNotFound, result)
	case session.IsTransport(result.Err):
		c.JSON(http.StatusBadGateway, result)
	default:
		logger.Errorf("[api] settings save failed ip=%s section=%s err=%s", c.ClientIP(), result.Section, result.Message)
		c.JSON(http.StatusInternalServerError, result)
	}
}

func (r *Router) handleTrades(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	history := r.controller.View().TradeHistory
	if limit > 0 && limit < len(history) {
		history = history[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"trades": history, "count": len(history)})
}

func (r *Router) handleLiveTrades(c *gin.Context) {
	if r.bot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bot 接口未配置"})
		return
	}
	callCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	trades, err := r.bot.LiveTrades(callCtx)
	cancel()
	if err != nil {
		logger.Warnf("[api] live trades failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

func (r *Router) handleStats(c *gin.Context) {
	view := r.controller.View()
	if view.Stats == nil {
		c.JSON(http.StatusOK, gin.H{"stats": types.BotStats{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": view.Stats})
}

// handleIngestTrade 接收 bot 推送的成交记录。落库成功后广播 records
// 变更，让会话视图立即刷新而不必等轮询。
func (r *Router) handleIngestTrade(c *gin.Context) {
	var record types.TradeRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		logger.Errorf("[api] trade ingest bind failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(record.BuyTxSignature) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buy_tx_signature 不能为空"})
		return
	}
	if err := r.records.SaveTradeRecord(c.Request.Context(), &record); err != nil {
		logger.Errorf("[api] trade ingest failed ip=%s sig=%s err=%v", c.ClientIP(), record.BuyTxSignature, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Infof("[api] trade ingested ip=%s sig=%s status=%s", c.ClientIP(), record.BuyTxSignature, record.Status)
	if r.broker != nil {
		r.broker.PublishRecords()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) handleIngestStats(c *gin.Context) {
	var stats types.BotStats
	if err := c.ShouldBindJSON(&stats); err != nil {
		logger.Errorf("[api] stats ingest bind failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.records.UpsertStats(c.Request.Context(), stats); err != nil {
		logger.Errorf("[api] stats ingest failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if r.broker != nil {
		r.broker.PublishRecords()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

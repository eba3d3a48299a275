// Package session 持有单个 dashboard 会话的 bot 视图：状态、设置、
// 交易历史与统计，并负责把命令结果和异步到达的事件收敛到同一份视图上。
package session

import (
	"context"
	"sync"
	"time"

	"snipedash/internal/gateway/notifier"
	"snipedash/internal/logger"
	"snipedash/internal/settings"
	"snipedash/internal/types"
)

// CommandGateway 向外部 bot 发送启停命令，每次调用恰好一次往返。
type CommandGateway interface {
	Start(ctx context.Context) (types.BotStatus, error)
	Stop(ctx context.Context) (types.BotStatus, error)
}

// StatusReader 读取 bot 当前状态，通信失败时收敛为 error。
type StatusReader interface {
	GetStatus(ctx context.Context) (types.BotStatus, error)
}

// ConfigPusher 把最新设置推送给运行中的 bot（尽力而为）。
type ConfigPusher interface {
	PushConfig(ctx context.Context, doc *types.BotSettings) error
}

// RecordReader 是控制器对记录存储的只读+设置写入依赖。
type RecordReader interface {
	GetSettings(ctx context.Context) (*types.BotSettings, error)
	UpsertSettings(ctx context.Context, doc *types.BotSettings) (*types.BotSettings, error)
	ListTradeHistory(ctx context.Context, limit int) ([]types.TradeRecord, error)
	GetStats(ctx context.Context) (*types.BotStats, error)
}

// StatusChannel 是异步事件流的订阅入口。
type StatusChannel interface {
	Subscribe(onStatus func(types.BotStatus), onRecords func()) func()
}

// NotificationLog 持久化通知流（可选依赖），进程重启后回放最近事件。
type NotificationLog interface {
	Append(ctx context.Context, n Notification) error
	Recent(ctx context.Context, limit int) ([]Notification, error)
}

const (
	defaultHistoryLimit = 200
	maxNotifications    = 100
	refreshTimeout      = 10 * time.Second
)

// Deps 列出控制器的全部协作方。Pusher、Notifier 与 Audit 允许为 nil。
type Deps struct {
	Gateway  CommandGateway
	Status   StatusReader
	Store    RecordReader
	Channel  StatusChannel
	Pusher   ConfigPusher
	Notifier notifier.TextNotifier
	Audit    NotificationLog
}

// Controller 是会话视图的唯一持有者。视图的全部变更在持锁临界区内完成；
// 事件回调来自 watcher goroutine，锁等价于原实现的单线程协作调度。
type Controller struct {
	deps         Deps
	historyLimit int

	mu            sync.Mutex
	status        types.BotStatus
	settings      *types.BotSettings
	history       []types.TradeRecord
	stats         *types.BotStats
	inFlight      bool
	alive         bool
	unsubscribe   func()
	notifications []Notification
	auditCh       chan Notification
}

func NewController(deps Deps) *Controller {
	c := &Controller{
		deps:         deps,
		historyLimit: defaultHistoryLimit,
		status:       types.StatusIdle,
		alive:        true,
	}
	if deps.Audit != nil {
		c.auditCh = make(chan Notification, maxNotifications)
		go c.auditWriter()
	}
	return c
}

// auditWriter 单 goroutine 串行落盘通知，持久化顺序与内存追加顺序一致。
func (c *Controller) auditWriter() {
	for n := range c.auditCh {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		if err := c.deps.Audit.Append(ctx, n); err != nil {
			logger.Warnf("notification persist failed: %v", err)
		}
		cancel()
	}
}

// Initialize 全量加载状态、设置、交易历史与统计，并建立事件订阅。
// 四类数据的拉取互相隔离：单类失败只记日志，不阻塞其余加载；
// 状态拉取失败时状态置为 error 而不是沿用旧值。
func (c *Controller) Initialize(ctx context.Context) error {
	status, err := c.deps.Status.GetStatus(ctx)
	if err != nil {
		logger.Warnf("initial status fetch failed: %v", err)
		status = types.StatusError
	}

	doc, err := c.deps.Store.GetSettings(ctx)
	if err != nil {
		logger.Warnf("initial settings fetch failed: %v", err)
		doc = nil
	}

	history, err := c.deps.Store.ListTradeHistory(ctx, c.historyLimit)
	if err != nil {
		logger.Warnf("initial trade history fetch failed: %v", err)
		history = nil
	}

	stats, err := c.deps.Store.GetStats(ctx)
	if err != nil {
		logger.Warnf("initial stats fetch failed: %v", err)
		stats = nil
	}

	var replayed []Notification
	if c.deps.Audit != nil {
		replayed, err = c.deps.Audit.Recent(ctx, maxNotifications)
		if err != nil {
			logger.Warnf("notification replay failed: %v", err)
			replayed = nil
		}
	}

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return nil
	}
	c.status = status
	c.settings = doc
	c.history = history
	c.stats = stats
	if len(replayed) > 0 && len(c.notifications) == 0 {
		c.notifications = replayed
	}
	needSub := c.unsubscribe == nil && c.deps.Channel != nil
	c.mu.Unlock()

	if needSub {
		unsub := c.deps.Channel.Subscribe(c.onStatusChanged, c.onRecordsChanged)
		c.mu.Lock()
		if c.alive && c.unsubscribe == nil {
			c.unsubscribe = unsub
			c.mu.Unlock()
		} else {
			c.mu.Unlock()
			unsub()
		}
	}
	return nil
}

// Start 发送启动命令。命令在途时的并发调用压制为 no-op（恰好一次网关调用）。
// 在途标志在成功与失败两条路径上都会被清除。
func (c *Controller) Start(ctx context.Context) CommandResult {
	return c.command(ctx, OpStart)
}

// Stop 发送停止命令，语义与 Start 对称，成功时目标状态为 idle。
func (c *Controller) Stop(ctx context.Context) CommandResult {
	return c.command(ctx, OpStop)
}

func (c *Controller) command(ctx context.Context, op CommandOp) CommandResult {
	c.mu.Lock()
	if !c.alive || c.inFlight {
		c.mu.Unlock()
		return CommandResult{Op: op, Skipped: true}
	}
	c.inFlight = true
	// 乐观过渡：网关往返期间展示 starting/stopping。
	if op == OpStart {
		c.status = types.StatusStarting
	} else {
		c.status = types.StatusStopping
	}
	c.mu.Unlock()

	var status types.BotStatus
	var err error
	if op == OpStart {
		status, err = c.deps.Gateway.Start(ctx)
	} else {
		status, err = c.deps.Gateway.Stop(ctx)
	}

	c.mu.Lock()
	c.inFlight = false
	if !c.alive {
		// 会话已销毁，丢弃迟到的命令结果。
		c.mu.Unlock()
		return CommandResult{Op: op, Skipped: true}
	}
	if err != nil {
		c.status = types.StatusError
		kind := NoteStartFailed
		if op == OpStop {
			kind = NoteStopFailed
		}
		c.record(Notification{Kind: kind, Message: err.Error(), At: time.Now()})
		c.mu.Unlock()
		logger.Errorf("bot %s failed: %v", op, err)
		c.notifyText(notifier.FormatStatusAlert(types.StatusError, string(op)+" failed: "+err.Error()))
		return CommandResult{Op: op, Ok: false, Status: types.StatusError, Message: err.Error()}
	}
	c.status = status
	kind, msg := NoteStarted, "bot started"
	if op == OpStop {
		kind, msg = NoteStopped, "bot stopped"
	}
	c.record(Notification{Kind: kind, Message: msg, At: time.Now()})
	c.mu.Unlock()
	logger.Infof("bot %s ok, status=%s", op, status)
	c.notifyText(notifier.FormatStatusAlert(status, ""))
	return CommandResult{Op: op, Ok: true, Status: status}
}

// SaveSection 把 patch 合并进指定分组并持久化。成功后内存视图替换为
// 落库返回的文档（而非本地合并结果），以反映服务端分配的字段。
// 校验或持久化失败时内存视图保持不变。
func (c *Controller) SaveSection(ctx context.Context, rawSection string, patch map[string]any) SaveResult {
	section, ok := types.ParseSection(rawSection)
	if !ok {
		err := &settings.ValidationError{Section: types.Section(rawSection), Detail: "unknown section"}
		return SaveResult{Ok: false, Err: err, Message: err.Error()}
	}

	c.mu.Lock()
	alive := c.alive
	current := c.settings.Clone()
	c.mu.Unlock()
	if !alive {
		err := &NotFoundError{Section: section}
		return SaveResult{Ok: false, Section: section, Err: err, Message: "session closed"}
	}

	base := current
	if base == nil || base.ID == "" {
		// 内存视图缺文档不代表库里没有：Initialize 容忍过瞬时拉取失败。
		// 惰性创建前先回源确认，避免同一部署分裂出第二份文档。
		fetched, fetchErr := c.deps.Store.GetSettings(ctx)
		if fetchErr != nil {
			return SaveResult{Ok: false, Section: section, Err: fetchErr, Message: fetchErr.Error()}
		}
		switch {
		case fetched != nil && fetched.ID != "":
			base = fetched
		case section != types.SectionGeneral:
			// 文档尚不存在：仅允许从 general 开始，惰性创建整份默认文档。
			err := &NotFoundError{Section: section}
			return SaveResult{Ok: false, Section: section, Err: err, Message: err.Error()}
		default:
			base = settings.WithDefaults(base)
		}
	}

	merged, err := settings.MergeSection(base, section, patch)
	if err != nil {
		return SaveResult{Ok: false, Section: section, Err: err, Message: err.Error()}
	}
	doc, err := merged.SectionDocument(section)
	if err != nil {
		return SaveResult{Ok: false, Section: section, Err: err, Message: err.Error()}
	}
	if err := settings.ValidateSection(section, doc); err != nil {
		return SaveResult{Ok: false, Section: section, Err: err, Message: err.Error()}
	}

	persisted, err := c.deps.Store.UpsertSettings(ctx, merged)
	if err != nil {
		return SaveResult{Ok: false, Section: section, Err: err, Message: err.Error()}
	}

	c.mu.Lock()
	running := false
	if c.alive {
		c.settings = persisted
		running = c.status == types.StatusRunning || c.status == types.StatusStarting
	}
	c.mu.Unlock()

	// 配置推送尽力而为：存储才是事实来源，推送失败不影响保存结果。
	if running && c.deps.Pusher != nil {
		if err := c.deps.Pusher.PushConfig(ctx, persisted); err != nil {
			logger.Warnf("config push to running bot failed: %v", err)
		}
	}
	return SaveResult{Ok: true, Section: section, Settings: persisted.Clone()}
}

// Teardown 释放事件订阅并标记会话结束，可重复调用。
// 通知只在 alive 状态下写入通道，置位后关闭不会与写入竞争。
func (c *Controller) Teardown() {
	c.mu.Lock()
	wasAlive := c.alive
	c.alive = false
	unsub := c.unsubscribe
	c.unsubscribe = nil
	ch := c.auditCh
	c.auditCh = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	if wasAlive && ch != nil {
		close(ch)
	}
}

// View 返回当前会话快照（深拷贝，调用方可自由持有）。
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := View{
		Status:          c.status,
		Settings:        c.settings.Clone(),
		TradeHistory:    append([]types.TradeRecord(nil), c.history...),
		CommandInFlight: c.inFlight,
	}
	if c.stats != nil {
		stats := *c.stats
		view.Stats = &stats
	}
	return view
}

// Notifications 返回已记录的用户可见事件（时间正序）。
func (c *Controller) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.notifications...)
}

func (c *Controller) onStatusChanged(status types.BotStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return
	}
	c.status = status
}

// onRecordsChanged 收到粗粒度变更信号后全量重拉历史与统计。
func (c *Controller) onRecordsChanged() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	history, err := c.deps.Store.ListTradeHistory(ctx, c.historyLimit)
	if err != nil {
		logger.Warnf("trade history refresh failed: %v", err)
		return
	}
	stats, statsErr := c.deps.Store.GetStats(ctx)
	if statsErr != nil {
		logger.Warnf("stats refresh failed: %v", statsErr)
	}

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}
	previous := c.history
	c.history = history
	if statsErr == nil {
		c.stats = stats
	}
	c.mu.Unlock()

	c.alertTradeChanges(previous, history)
}

// alertTradeChanges 对比新旧历史，为新建仓与新离场各推送一条告警。
func (c *Controller) alertTradeChanges(previous, current []types.TradeRecord) {
	if c.deps.Notifier == nil {
		return
	}
	prevStatus := make(map[string]types.TradeStatus, len(previous))
	for _, tr := range previous {
		prevStatus[tr.BuyTxSignature] = tr.Status
	}
	for _, tr := range current {
		old, seen := prevStatus[tr.BuyTxSignature]
		switch {
		case !seen && tr.Status == types.TradeActive:
			c.notifyText(notifier.FormatBuyAlert(tr))
		case tr.Status.Terminal() && (!seen || !old.Terminal()):
			c.notifyText(notifier.FormatSellAlert(tr))
		}
	}
}

// record 在持锁状态下追加通知；落盘交给 auditWriter 异步串行处理，
// 写入积压时丢弃并记日志，不阻塞临界区。
func (c *Controller) record(n Notification) {
	c.notifications = append(c.notifications, n)
	if len(c.notifications) > maxNotifications {
		c.notifications = c.notifications[len(c.notifications)-maxNotifications:]
	}
	if c.auditCh != nil {
		select {
		case c.auditCh <- n:
		default:
			logger.Warnf("notification log backlog full, dropping entry")
		}
	}
}

// notifyText 异步发送 telegram 通知，失败只记日志。
func (c *Controller) notifyText(text string) {
	if c.deps.Notifier == nil {
		return
	}
	go func() {
		if err := c.deps.Notifier.SendText(text); err != nil {
			logger.Warnf("telegram notify failed: %v", err)
		}
	}()
}

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"snipedash/internal/config"
	"snipedash/internal/events"
	"snipedash/internal/gateway/botapi"
	"snipedash/internal/gateway/notifier"
	"snipedash/internal/logger"
	"snipedash/internal/session"
	"snipedash/internal/store"
	"snipedash/internal/store/auditlog"
	"snipedash/internal/store/sqlite"
	dashhttp "snipedash/internal/transport/http/dashboard"
)

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
}

// AppBuilder 按依赖顺序组装应用。各构造函数可替换，测试时注入假实现。
type AppBuilder struct {
	cfg *config.Config

	storeFn    func(config.DatabaseConfig) (store.RecordStore, error)
	clientFn   func(config.BotConfig) (*botapi.Client, error)
	notifierFn func(config.NotifyConfig) notifier.TextNotifier
	serverFn   func(dashhttp.ServerConfig) (*dashhttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithStore 覆盖存储构造，测试用。
func WithStore(s store.RecordStore) AppBuilderOption {
	return func(b *AppBuilder) {
		b.storeFn = func(config.DatabaseConfig) (store.RecordStore, error) { return s, nil }
	}
}

// WithNotifier 覆盖通知器构造，测试用。
func WithNotifier(n notifier.TextNotifier) AppBuilderOption {
	return func(b *AppBuilder) {
		b.notifierFn = func(config.NotifyConfig) notifier.TextNotifier { return n }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		storeFn:    buildStore,
		clientFn:   buildBotClient,
		notifierFn: buildNotifier,
		serverFn:   dashhttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func buildStore(cfg config.DatabaseConfig) (store.RecordStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}
	return sqlite.NewSqliteStore(cfg.Path)
}

func buildBotClient(cfg config.BotConfig) (*botapi.Client, error) {
	return botapi.NewClient(cfg)
}

func buildNotifier(cfg config.NotifyConfig) notifier.TextNotifier {
	if !cfg.Telegram.Enabled {
		return notifier.Nop{}
	}
	return notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
}

// Build 组装全部依赖但不启动任何 goroutine，启动交给 App.Run。
func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	recordStore, err := b.storeFn(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("初始化存储失败: %w", err)
	}
	logger.Infof("✓ 记录存储就绪: %s", cfg.Database.Path)

	client, err := b.clientFn(cfg.Bot)
	if err != nil {
		return nil, fmt.Errorf("初始化 bot 客户端失败: %w", err)
	}
	logger.Infof("✓ bot 控制接口: %s", cfg.Bot.APIURL)

	textNotifier := b.notifierFn(cfg.Notify)
	if cfg.Notify.Telegram.Enabled {
		logger.Infof("✓ telegram 通知已启用")
	}

	// 通知日志与记录库放在同一目录，初始化失败降级为纯内存通知。
	var noteLog session.NotificationLog
	audit, err := auditlog.NewNotificationLogStore(
		filepath.Join(filepath.Dir(cfg.Database.Path), "notifications.db"))
	if err != nil {
		logger.Warnf("通知日志初始化失败: %v", err)
		audit = nil
	} else {
		noteLog = audit
	}

	broker := events.NewBroker()
	watcher := events.NewWatcher(client, recordStore, broker,
		time.Duration(cfg.Watch.StatusIntervalSeconds)*time.Second,
		time.Duration(cfg.Watch.RecordsIntervalSeconds)*time.Second,
	)

	controller := session.NewController(session.Deps{
		Gateway:  client,
		Status:   client,
		Store:    recordStore,
		Channel:  broker,
		Pusher:   client,
		Notifier: textNotifier,
		Audit:    noteLog,
	})

	server, err := b.serverFn(dashhttp.ServerConfig{
		Addr:       cfg.App.HTTPAddr,
		Controller: controller,
		Bot:        client,
		Records:    recordStore,
		Broker:     broker,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 HTTP 服务失败: %w", err)
	}

	return &App{
		cfg:        cfg,
		store:      recordStore,
		audit:      audit,
		controller: controller,
		watcher:    watcher,
		server:     server,
	}, nil
}

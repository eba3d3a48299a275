package app

import (
	"context"
	"fmt"
	"time"

	"snipedash/internal/config"
	"snipedash/internal/events"
	"snipedash/internal/logger"
	"snipedash/internal/session"
	"snipedash/internal/store"
	"snipedash/internal/store/auditlog"
	dashhttp "snipedash/internal/transport/http/dashboard"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动 HTTP 服务与事件轮询。
type App struct {
	cfg        *config.Config
	store      store.RecordStore
	audit      *auditlog.NotificationLogStore
	controller *session.Controller
	watcher    *events.Watcher
	server     *dashhttp.Server
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Controller 暴露底层会话控制器（测试与回放用）。
func (a *App) Controller() *session.Controller {
	if a == nil {
		return nil
	}
	return a.controller
}

// Run 初始化会话视图并启动 HTTP 服务与事件轮询，直到 ctx 取消。
func (a *App) Run(ctx context.Context, configPath string) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}

	if err := a.controller.Initialize(ctx); err != nil {
		return fmt.Errorf("session initialize error: %w", err)
	}
	defer a.controller.Teardown()
	defer func() {
		if err := a.store.Close(); err != nil {
			logger.Warnf("关闭存储失败: %v", err)
		}
		if a.audit != nil {
			if err := a.audit.Close(); err != nil {
				logger.Warnf("关闭通知日志失败: %v", err)
			}
		}
	}()

	group, ctx := errgroup.WithContext(ctx)

	// 配置热更新：日志级别与轮询间隔即时生效，其余字段下次启动生效。
	// viper 的监听 goroutine 无法停止，回调以组 ctx 兜底，退出后到达的
	// 重载事件不再触碰已拆除的依赖。
	if configPath != "" {
		stopWatch, err := config.Watch(configPath, a.reloadGuard(ctx))
		if err != nil {
			logger.Warnf("配置热更新不可用: %v", err)
		} else {
			defer stopWatch()
		}
	}
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("dashboard http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return a.watcher.Run(ctx)
	})

	logger.Infof("snipedash 已启动 addr=%s env=%s", a.server.Addr(), a.cfg.App.Env)
	return group.Wait()
}

// reloadGuard 包装 applyReload，ctx 结束后的迟到回调直接丢弃。
func (a *App) reloadGuard(ctx context.Context) func(*config.Config) {
	return func(next *config.Config) {
		if ctx.Err() != nil {
			return
		}
		a.applyReload(next)
	}
}

func (a *App) applyReload(next *config.Config) {
	if next == nil {
		return
	}
	logger.SetLevel(next.App.LogLevel)
	a.watcher.SetIntervals(
		time.Duration(next.Watch.StatusIntervalSeconds)*time.Second,
		time.Duration(next.Watch.RecordsIntervalSeconds)*time.Second,
	)
	logger.Infof("配置已重载 log_level=%s status_every=%ds records_every=%ds",
		next.App.LogLevel, next.Watch.StatusIntervalSeconds, next.Watch.RecordsIntervalSeconds)
}

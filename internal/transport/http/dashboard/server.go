// Package dashhttp 提供 dashboard 的 HTTP 服务：会话视图查询、启停命令、
// 设置读写、交易记录/统计查询、bot 侧写入回调以及 SSE 事件流。
package dashhttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"snipedash/internal/events"
	"snipedash/internal/logger"

	"github.com/gin-gonic/gin"
)

// Server 包装 gin engine 与监听地址。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述 dashboard HTTP 服务依赖。
type ServerConfig struct {
	Addr       string
	Controller SessionController
	Bot        LiveTradeReader
	Records    RecordIngestor
	Broker     *events.Broker
}

// NewServer 构建 dashboard HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Controller == nil {
		return nil, errors.New("dashboard http server requires a session controller")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8090"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r := NewRouter(cfg.Controller, cfg.Bot, cfg.Records, cfg.Broker)
	r.Register(router.Group("/api"))
	router.GET("/chart", r.handleProfitChart)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// requestLogger 记录每次接口调用，便于追踪面板操作。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler 暴露底层 handler，测试用。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

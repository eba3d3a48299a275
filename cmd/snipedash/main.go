package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"snipedash/internal/app"
	sdcfg "snipedash/internal/config"
	"snipedash/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("SNIPEDASH_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		// 首次启动：生成带默认值的示例配置后继续。
		if err := sdcfg.WriteExample(cfgPath); err != nil {
			log.Fatalf("生成示例配置失败: %v", err)
		}
		log.Printf("已生成示例配置: %s", cfgPath)
	}

	cfg, err := sdcfg.Load(cfgPath)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		log.Fatalf("初始化日志文件失败: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("✓ 配置加载成功（环境=%s，bot=%s）", cfg.App.Env, cfg.Bot.APIURL)

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}
	if err := application.Run(ctx, cfgPath); err != nil {
		log.Fatalf("运行失败: %v", err)
	}
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}

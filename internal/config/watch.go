package config

import (
	"strings"

	"snipedash/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch 监听配置文件变更，重载成功后回调最新配置。
// 重载失败只记日志，已生效的配置保持不变。返回停止监听的函数。
func Watch(path string, onChange func(*Config)) (func(), error) {
	if strings.TrimSpace(path) == "" || onChange == nil {
		return func() {}, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		cfg, err := Load(path)
		if err != nil {
			logger.Errorf("config reload failed (%s): %v", evt.Name, err)
			return
		}
		logger.Infof("config reloaded from %s", path)
		onChange(cfg)
	})
	v.WatchConfig()
	// viper 没有暴露停止接口，停止依赖进程退出；返回空函数保持调用面一致。
	return func() {}, nil
}

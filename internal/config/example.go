package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteExample 在 path 写出一份全默认值的示例配置，文件已存在时不覆盖。
func WriteExample(path string) error {
	if path == "" {
		return fmt.Errorf("config path cannot be empty")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing config: %s", path)
	}
	cfg := Default()
	doc := map[string]any{
		"app": map[string]any{
			"env":       cfg.App.Env,
			"log_level": cfg.App.LogLevel,
			"http_addr": cfg.App.HTTPAddr,
			"log_path":  cfg.App.LogPath,
		},
		"bot": map[string]any{
			"api_url":         cfg.Bot.APIURL,
			"api_token":       "",
			"timeout_seconds": cfg.Bot.TimeoutSeconds,
		},
		"database": map[string]any{
			"path": cfg.Database.Path,
		},
		"notify": map[string]any{
			"telegram": map[string]any{
				"enabled":   false,
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"watch": map[string]any{
			"status_interval_seconds":  cfg.Watch.StatusIntervalSeconds,
			"records_interval_seconds": cfg.Watch.RecordsIntervalSeconds,
		},
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0o644)
}

package config

import "strings"

// Config 是 snipedash 的主配置载体。
type Config struct {
	App      AppConfig      `toml:"app"`
	Bot      BotConfig      `toml:"bot"`
	Database DatabaseConfig `toml:"database"`
	Notify   NotifyConfig   `toml:"notify"`
	Watch    WatchConfig    `toml:"watch"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// BotConfig 描述外部狙击 bot 控制接口的访问方式。
type BotConfig struct {
	APIURL         string `toml:"api_url"`
	APIToken       string `toml:"api_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// WatchConfig 控制状态轮询与记录变更探测的节奏。
type WatchConfig struct {
	StatusIntervalSeconds  int `toml:"status_interval_seconds"`
	RecordsIntervalSeconds int `toml:"records_interval_seconds"`
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

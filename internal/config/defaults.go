package config

import "strings"

// 默认值常量
const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppHTTPAddr     = ":8090"
	defaultBotAPI          = "http://127.0.0.1:8000"
	defaultBotTimeout      = 15
	defaultDatabasePath    = "data/snipedash.db"
	defaultStatusInterval  = 3
	defaultRecordsInterval = 5
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Bot.applyDefaults(keys)
	c.Database.applyDefaults(keys)
	c.Watch.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (b *BotConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("bot.api_url", &b.APIURL, defaultBotAPI),
		fieldDefault{
			key:   "bot.timeout_seconds",
			need:  func() bool { return b.TimeoutSeconds <= 0 },
			apply: func() { b.TimeoutSeconds = defaultBotTimeout },
		},
	)
}

func (d *DatabaseConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("database.path", &d.Path, defaultDatabasePath),
	)
}

func (w *WatchConfig) applyDefaults(keys keySet) {
	if w == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "watch.status_interval_seconds",
			need:  func() bool { return w.StatusIntervalSeconds <= 0 },
			apply: func() { w.StatusIntervalSeconds = defaultStatusInterval },
		},
		fieldDefault{
			key:   "watch.records_interval_seconds",
			need:  func() bool { return w.RecordsIntervalSeconds <= 0 },
			apply: func() { w.RecordsIntervalSeconds = defaultRecordsInterval },
		},
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

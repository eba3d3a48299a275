package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.Bot.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	if err := c.Watch.validate(); err != nil {
		return err
	}
	return nil
}

func (b *BotConfig) validate() error {
	raw := strings.TrimSpace(b.APIURL)
	if raw == "" {
		return fmt.Errorf("bot.api_url 不能为空")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("bot.api_url 无法解析: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("bot.api_url 仅支持 http/https (got %q)", parsed.Scheme)
	}
	if b.TimeoutSeconds < 0 {
		return fmt.Errorf("bot.timeout_seconds must be >= 0")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	tg := n.Telegram
	if !tg.Enabled {
		return nil
	}
	if strings.TrimSpace(tg.BotToken) == "" {
		return fmt.Errorf("notify.telegram.bot_token required when telegram enabled")
	}
	if strings.TrimSpace(tg.ChatID) == "" {
		return fmt.Errorf("notify.telegram.chat_id required when telegram enabled")
	}
	return nil
}

func (w *WatchConfig) validate() error {
	if w.StatusIntervalSeconds < 0 {
		return fmt.Errorf("watch.status_interval_seconds must be >= 0")
	}
	if w.RecordsIntervalSeconds < 0 {
		return fmt.Errorf("watch.records_interval_seconds must be >= 0")
	}
	return nil
}

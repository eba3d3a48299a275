package types

import "strings"

// BotStatus 表示外部狙击 bot 当前的运行状态（以本进程最后一次观测为准）。
type BotStatus string

const (
	StatusIdle     BotStatus = "idle"
	StatusStarting BotStatus = "starting"
	StatusRunning  BotStatus = "running"
	StatusStopping BotStatus = "stopping"
	StatusError    BotStatus = "error"
)

// ParseBotStatus normalizes a status string reported by the bot process.
// The bot reports "stopped" for what the dashboard models as idle.
func ParseBotStatus(raw string) (BotStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "idle", "stopped":
		return StatusIdle, true
	case "starting":
		return StatusStarting, true
	case "running":
		return StatusRunning, true
	case "stopping":
		return StatusStopping, true
	case "error":
		return StatusError, true
	default:
		return StatusError, false
	}
}

func (s BotStatus) Valid() bool {
	switch s {
	case StatusIdle, StatusStarting, StatusRunning, StatusStopping, StatusError:
		return true
	}
	return false
}

func (s BotStatus) String() string { return string(s) }

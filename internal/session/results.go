package session

import (
	"time"

	"snipedash/internal/types"
)

// CommandOp 标识一次启停命令。
type CommandOp string

const (
	OpStart CommandOp = "start"
	OpStop  CommandOp = "stop"
)

// CommandResult 是启停命令的结构化结果。命令在途时的重复调用不报错，
// 以 Skipped 返回（StateConflict 压制为 no-op）。
type CommandResult struct {
	Op      CommandOp       `json:"op"`
	Ok      bool            `json:"ok"`
	Skipped bool            `json:"skipped,omitempty"`
	Status  types.BotStatus `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
}

// SaveResult 是一次分组保存的结构化结果。失败时 Err 携带错误分类
// （ValidationError / NotFoundError / 传输错误），内存视图不变。
type SaveResult struct {
	Ok       bool               `json:"ok"`
	Section  types.Section      `json:"section,omitempty"`
	Settings *types.BotSettings `json:"settings,omitempty"`
	Err      error              `json:"-"`
	Message  string             `json:"message,omitempty"`
}

// NoteKind 是会话通知的种类。
type NoteKind string

const (
	NoteStarted     NoteKind = "bot_started"
	NoteStartFailed NoteKind = "bot_start_failed"
	NoteStopped     NoteKind = "bot_stopped"
	NoteStopFailed  NoteKind = "bot_stop_failed"
)

// Notification 记录一次面向用户的事件，由展示层决定提示方式。
type Notification struct {
	Kind    NoteKind  `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// View 是展示层观察到的当前会话快照。
type View struct {
	Status          types.BotStatus     `json:"status"`
	Settings        *types.BotSettings  `json:"settings,omitempty"`
	TradeHistory    []types.TradeRecord `json:"trade_history"`
	Stats           *types.BotStats     `json:"stats,omitempty"`
	CommandInFlight bool                `json:"command_in_flight"`
}

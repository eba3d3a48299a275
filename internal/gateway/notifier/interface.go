package notifier

// TextNotifier defines a minimal text notification interface.
// It is intentionally small so different components can depend on it without
// importing concrete implementations (e.g. Telegram).
type TextNotifier interface {
	SendText(text string) error
}

// Nop 丢弃全部通知，telegram 未配置时使用。
type Nop struct{}

func (Nop) SendText(string) error { return nil }

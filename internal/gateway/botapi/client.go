package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdconfig "snipedash/internal/config"
	"snipedash/internal/types"

	"github.com/tidwall/gjson"
)

// TransportError 表示与 bot 控制接口之间的一次通信失败（不可达或非 2xx）。
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bot api %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client wraps the sniper bot control API required by the dashboard.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
}

// NewClient constructs a bot API client from configuration.
func NewClient(cfg sdconfig.BotConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.APIURL)
	if raw == "" {
		return nil, fmt.Errorf("bot.api_url 不能为空")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("解析 bot.api_url 失败: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		token:      strings.TrimSpace(cfg.APIToken),
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Start 发送启动命令。恰好一次往返，不在内部重试：对有状态的 start
// 盲目重试有重复启动外部进程的风险，重试策略归调用方。
func (c *Client) Start(ctx context.Context) (types.BotStatus, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, "/start", nil)
	if err != nil {
		return types.StatusError, err
	}
	return commandStatus(raw, types.StatusStarting), nil
}

// Stop 发送停止命令，语义与 Start 对称。
func (c *Client) Stop(ctx context.Context) (types.BotStatus, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, "/stop", nil)
	if err != nil {
		return types.StatusError, err
	}
	return commandStatus(raw, types.StatusStopping), nil
}

// GetStatus 查询 bot 当前状态，通信失败时收敛为 error 状态。
func (c *Client) GetStatus(ctx context.Context) (types.BotStatus, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return types.StatusError, err
	}
	status, ok := types.ParseBotStatus(gjson.GetBytes(raw, "status").String())
	if !ok {
		return types.StatusError, &TransportError{
			Op:  "status",
			Err: fmt.Errorf("bot 返回未知状态: %s", gjson.GetBytes(raw, "status").String()),
		}
	}
	return status, nil
}

// PushConfig 把按分组组织的设置文档推送给运行中的 bot（POST /config）。
func (c *Client) PushConfig(ctx context.Context, doc *types.BotSettings) error {
	if doc == nil {
		return fmt.Errorf("settings 不能为空")
	}
	payload := map[string]any{
		"buy_conditions":  doc.Buy,
		"sell_conditions": doc.Sell,
		"risk_control":    doc.Risk,
	}
	if doc.General != nil {
		payload["rpc_url"] = doc.General.RPCURL
		payload["wallet_address"] = doc.General.WalletAddress
		payload["telegram_enabled"] = doc.General.TelegramEnabled
		if doc.General.TelegramToken != "" {
			payload["telegram_token"] = doc.General.TelegramToken
		}
		if doc.General.TelegramChatID != "" {
			payload["telegram_chat_id"] = doc.General.TelegramChatID
		}
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/config", payload)
	return err
}

// LiveTrades 拉取 bot 内存中的在途持仓（GET /trades）。
func (c *Client) LiveTrades(ctx context.Context) ([]types.LiveTrade, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/trades", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Trades []types.LiveTrade `json:"trades"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &TransportError{Op: "trades", Err: fmt.Errorf("解析 /trades 响应失败: %w", err)}
	}
	return resp.Trades, nil
}

// commandStatus 解析命令响应中的状态。老版本 bot 只回 message 不带
// status 字段，按消息内容推断。
func commandStatus(raw []byte, fallback types.BotStatus) types.BotStatus {
	if s, ok := types.ParseBotStatus(gjson.GetBytes(raw, "status").String()); ok && gjson.GetBytes(raw, "status").Exists() {
		return s
	}
	msg := strings.ToLower(gjson.GetBytes(raw, "message").String())
	switch {
	case strings.Contains(msg, "already running"):
		return types.StatusRunning
	case strings.Contains(msg, "already stopped"):
		return types.StatusIdle
	}
	return fallback
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, &TransportError{Op: path, Err: fmt.Errorf("bot api client 未初始化")}
	}
	endpoint, err := c.resolveEndpoint(path)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, &TransportError{Op: path, Err: fmt.Errorf("序列化请求失败: %w", err)}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, &TransportError{Op: path, Err: fmt.Errorf("构造请求失败: %w", err)}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: path, Err: fmt.Errorf("调用 bot api 失败: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &TransportError{Op: path, Err: fmt.Errorf("读取响应失败: %w", err)}
	}
	if resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(data))
		if detail == "" {
			detail = resp.Status
		}
		return nil, &TransportError{Op: path, Err: fmt.Errorf("bot 返回错误(%s): %s", resp.Status, detail)}
	}
	return data, nil
}

func (c *Client) resolveEndpoint(path string) (*url.URL, error) {
	if c.baseURL == nil {
		return nil, fmt.Errorf("bot API 地址未设置")
	}
	trimmed := strings.TrimSpace(path)
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	base := *c.baseURL
	base.Path = strings.TrimSuffix(base.Path, "/") + trimmed
	base.RawQuery = ""
	base.Fragment = ""
	return &base, nil
}

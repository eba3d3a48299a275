package botapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdconfig "snipedash/internal/config"
	"snipedash/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(sdconfig.BotConfig{APIURL: srv.URL, APIToken: "secret-token"})
	require.NoError(t, err)
	return client, srv
}

func TestNewClient(t *testing.T) {
	t.Run("empty url rejected", func(t *testing.T) {
		_, err := NewClient(sdconfig.BotConfig{})
		assert.Error(t, err)
	})
}

func TestClientGetStatus(t *testing.T) {
	t.Run("parses status field", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/status", r.URL.Path)
			assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{"status": "running"})
		}))
		status, err := client.GetStatus(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.StatusRunning, status)
	})

	t.Run("stopped maps to idle", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "stopped"})
		}))
		status, err := client.GetStatus(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.StatusIdle, status)
	})

	t.Run("unknown status fails closed", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "confused"})
		}))
		status, err := client.GetStatus(context.Background())
		require.Error(t, err)
		assert.Equal(t, types.StatusError, status)
	})

	t.Run("unreachable bot is a transport error", func(t *testing.T) {
		client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()
		status, err := client.GetStatus(context.Background())
		require.Error(t, err)
		var te *TransportError
		assert.ErrorAs(t, err, &te)
		assert.Equal(t, types.StatusError, status)
	})
}

func TestClientCommands(t *testing.T) {
	t.Run("start without status field falls back to starting", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/start", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"message": "Bot is starting"})
		}))
		status, err := client.Start(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.StatusStarting, status)
	})

	t.Run("already running inferred from message", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"message": "Bot is already running"})
		}))
		status, err := client.Start(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.StatusRunning, status)
	})

	t.Run("stop with explicit status", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/stop", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"status": "stopped", "message": "Bot stopped"})
		}))
		status, err := client.Stop(context.Background())
		require.NoError(t, err)
		assert.Equal(t, types.StatusIdle, status)
	})

	t.Run("non-2xx becomes transport error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal bot failure", http.StatusInternalServerError)
		}))
		status, err := client.Start(context.Background())
		require.Error(t, err)
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Contains(t, te.Error(), "internal bot failure")
		assert.Equal(t, types.StatusError, status)
	})
}

func TestClientPushConfig(t *testing.T) {
	t.Run("sends sectioned payload", func(t *testing.T) {
		var got map[string]any
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/config", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		doc := &types.BotSettings{
			General: &types.GeneralSettings{RPCURL: "https://rpc.example.com"},
			Buy:     &types.BuyConditions{MinimumLiquidity: 1000, Slippage: 1, AllowedDexes: []string{"jupiter"}},
			Sell:    &types.SellConditions{TargetProfit: 20, StopLoss: 10, MaxHoldingTime: 60},
			Risk:    &types.RiskControl{PositionSizePercentage: 5, MaxOpenTrades: 3, CooldownPeriod: 30},
		}
		require.NoError(t, client.PushConfig(context.Background(), doc))
		assert.Equal(t, "https://rpc.example.com", got["rpc_url"])
		assert.Contains(t, got, "buy_conditions")
		assert.Contains(t, got, "sell_conditions")
		assert.Contains(t, got, "risk_control")
	})

	t.Run("nil document rejected", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		assert.Error(t, client.PushConfig(context.Background(), nil))
	})
}

func TestClientLiveTrades(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trades", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"trades": []map[string]any{
				{"token_address": "Addr1", "token_symbol": "BONK", "entry_price": 0.000012, "amount_spent": 0.5},
			},
		})
	}))
	trades, err := client.LiveTrades(context.Background())
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "BONK", trades[0].TokenSymbol)
	assert.Equal(t, 0.5, trades[0].AmountSpent)
}

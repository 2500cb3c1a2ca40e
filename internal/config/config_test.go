// =================================
// File: internal/config/config_test.go
// =================================
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `{
	"rpc_list": ["https://api.mainnet-beta.solana.com"],
	"aggregator_url": "https://quote.example.com/v1"
}`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://api.mainnet-beta.solana.com"}, cfg.RPCList)
	assert.Equal(t, "https://quote.example.com/v1", cfg.AggregatorURL)
	assert.Equal(t, "https://price.jup.ag/v4", cfg.PriceAPIURL)
	assert.Equal(t, "https://tokens.jup.ag", cfg.TokenAPIURL)
	assert.Equal(t, "bolt", cfg.StoreBackend)
	assert.Equal(t, "data/basis.db", cfg.BoltPath)
	assert.Equal(t, DefaultDebounceMs, cfg.DebounceMs)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, "swapsies.log", cfg.LogFile)

	assert.Equal(t, 300*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 5*time.Second, cfg.QuoteTimeout())
	assert.Equal(t, 10*time.Second, cfg.PriceTTL())

	th := cfg.Thresholds()
	assert.True(t, th.Neutral.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, th.Caution.Equal(decimal.RequireFromString("1")))
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{
		"rpc_list": ["https://rpc.example.com"],
		"aggregator_url": "https://quote.example.com/v1",
		"store_backend": "redis",
		"redis_addr": "localhost:6379",
		"debounce_ms": 150,
		"neutral_threshold_pct": "0.25",
		"caution_threshold_pct": "2.5",
		"debug_logging": true,
		"metrics_addr": ":9109"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 150*time.Millisecond, cfg.Debounce())
	assert.True(t, cfg.DebugLogging)
	assert.Equal(t, ":9109", cfg.MetricsAddr)

	th := cfg.Thresholds()
	assert.True(t, th.Neutral.Equal(decimal.RequireFromString("0.25")))
	assert.True(t, th.Caution.Equal(decimal.RequireFromString("2.5")))
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			"empty rpc list",
			`{"aggregator_url": "https://quote.example.com"}`,
			"rpc_list is empty",
		},
		{
			"bad rpc scheme",
			`{"rpc_list": ["ftp://rpc.example.com"], "aggregator_url": "https://quote.example.com"}`,
			"invalid RPC URL protocol",
		},
		{
			"missing aggregator",
			`{"rpc_list": ["https://rpc.example.com"]}`,
			"missing aggregator_url",
		},
		{
			"unknown store backend",
			`{"rpc_list": ["https://rpc.example.com"], "aggregator_url": "https://q.example.com", "store_backend": "postgres"}`,
			"store_backend must be",
		},
		{
			"redis without addr",
			`{"rpc_list": ["https://rpc.example.com"], "aggregator_url": "https://q.example.com", "store_backend": "redis"}`,
			"requires redis_addr",
		},
		{
			"zero debounce",
			`{"rpc_list": ["https://rpc.example.com"], "aggregator_url": "https://q.example.com", "debounce_ms": 0}`,
			"invalid debounce_ms",
		},
		{
			"negative retries",
			`{"rpc_list": ["https://rpc.example.com"], "aggregator_url": "https://q.example.com", "retries": -1}`,
			"invalid retries",
		},
		{
			"garbage threshold",
			`{"rpc_list": ["https://rpc.example.com"], "aggregator_url": "https://q.example.com", "neutral_threshold_pct": "lots"}`,
			"invalid neutral_threshold_pct",
		},
		{
			"caution below neutral",
			`{"rpc_list": ["https://rpc.example.com"], "aggregator_url": "https://q.example.com", "neutral_threshold_pct": "2", "caution_threshold_pct": "1"}`,
			"caution_threshold_pct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SWAPSIES_RPC_LIST", "https://one.example.com, https://two.example.com")
	t.Setenv("SWAPSIES_AGGREGATOR_URL", "https://env-quote.example.com/v1")
	t.Setenv("SWAPSIES_ACTIVE_WALLET", "hot")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://one.example.com", "https://two.example.com"}, cfg.RPCList)
	assert.Equal(t, "https://env-quote.example.com/v1", cfg.AggregatorURL)
	assert.Equal(t, "hot", cfg.ActiveWallet)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

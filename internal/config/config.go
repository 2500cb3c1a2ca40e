// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/mcintyre94/swapsies/internal/cost"
)

type Config struct {
	RPCList       []string `mapstructure:"rpc_list"`
	AggregatorURL string   `mapstructure:"aggregator_url"`
	PriceAPIURL   string   `mapstructure:"price_api_url"`
	TokenAPIURL   string   `mapstructure:"token_api_url"`

	WalletsFile  string `mapstructure:"wallets_file"`
	ActiveWallet string `mapstructure:"active_wallet"`

	StoreBackend string `mapstructure:"store_backend"` // bolt, memory or redis
	BoltPath     string `mapstructure:"bolt_path"`
	RedisAddr    string `mapstructure:"redis_addr"`

	DebounceMs     int `mapstructure:"debounce_ms"`
	QuoteTimeoutMs int `mapstructure:"quote_timeout_ms"`
	PriceTTLMs     int `mapstructure:"price_ttl_ms"`
	Retries        int `mapstructure:"retries"`

	NeutralThresholdPct string `mapstructure:"neutral_threshold_pct"`
	CautionThresholdPct string `mapstructure:"caution_threshold_pct"`

	MetricsAddr  string `mapstructure:"metrics_addr"`
	JournalFile  string `mapstructure:"journal_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`

	neutral decimal.Decimal
	caution decimal.Decimal
}

const (
	DefaultDebounceMs     = 300
	DefaultQuoteTimeoutMs = 5000
	DefaultPriceTTLMs     = 10000
	DefaultRetries        = 3
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"price_api_url":         "https://price.jup.ag/v4",
		"token_api_url":         "https://tokens.jup.ag",
		"wallets_file":          "configs/wallets.csv",
		"store_backend":         "bolt",
		"bolt_path":             "data/basis.db",
		"debounce_ms":           DefaultDebounceMs,
		"quote_timeout_ms":      DefaultQuoteTimeoutMs,
		"price_ttl_ms":          DefaultPriceTTLMs,
		"retries":               DefaultRetries,
		"neutral_threshold_pct": "0.1",
		"caution_threshold_pct": "1",
		"log_file":              "swapsies.log",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.AggregatorURL == "" {
		return errors.New("missing aggregator_url in configuration")
	}
	if err := validateURLWithCache(cfg.AggregatorURL, "http"); err != nil {
		return errors.New("invalid aggregator URL protocol")
	}
	if err := validateURLWithCache(cfg.PriceAPIURL, "http"); err != nil {
		return errors.New("invalid price API URL protocol")
	}
	if err := validateURLWithCache(cfg.TokenAPIURL, "http"); err != nil {
		return errors.New("invalid token API URL protocol")
	}

	switch cfg.StoreBackend {
	case "bolt", "memory":
	case "redis":
		if cfg.RedisAddr == "" {
			return errors.New("redis store backend requires redis_addr")
		}
	default:
		return errors.New("store_backend must be bolt, memory or redis")
	}

	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	return validateThresholds(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.DebounceMs <= 0 {
		return errors.New("invalid debounce_ms")
	}
	if cfg.QuoteTimeoutMs <= 0 {
		return errors.New("invalid quote_timeout_ms")
	}
	if cfg.PriceTTLMs <= 0 {
		return errors.New("invalid price_ttl_ms")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	return nil
}

func validateThresholds(cfg *Config) error {
	neutral, err := decimal.NewFromString(cfg.NeutralThresholdPct)
	if err != nil || neutral.Sign() < 0 {
		return errors.New("invalid neutral_threshold_pct")
	}
	caution, err := decimal.NewFromString(cfg.CautionThresholdPct)
	if err != nil || caution.LessThan(neutral) {
		return errors.New("caution_threshold_pct must be at least neutral_threshold_pct")
	}
	cfg.neutral = neutral
	cfg.caution = caution
	return nil
}

// Debounce returns the preview debounce window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// QuoteTimeout returns the per-request aggregator timeout.
func (c *Config) QuoteTimeout() time.Duration {
	return time.Duration(c.QuoteTimeoutMs) * time.Millisecond
}

// PriceTTL returns how long fetched prices stay fresh.
func (c *Config) PriceTTL() time.Duration {
	return time.Duration(c.PriceTTLMs) * time.Millisecond
}

// Thresholds returns the validated severity thresholds.
func (c *Config) Thresholds() cost.Thresholds {
	return cost.Thresholds{Neutral: c.neutral, Caution: c.caution}
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("SWAPSIES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envURL := v.GetString("AGGREGATOR_URL"); envURL != "" {
		cfg.AggregatorURL = envURL
	}
	if envAddr := v.GetString("REDIS_ADDR"); envAddr != "" {
		cfg.RedisAddr = envAddr
	}
	if envWallet := v.GetString("ACTIVE_WALLET"); envWallet != "" {
		cfg.ActiveWallet = envWallet
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}

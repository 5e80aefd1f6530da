package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Server  ServerConfig  `mapstructure:"server"`
	Mock    MockConfig    `mapstructure:"mock"`
	Tickers []string      `mapstructure:"tickers"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	StocksPath    string `mapstructure:"stocks_path"`
	OptionsPath   string `mapstructure:"options_path"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryDelaySec int    `mapstructure:"retry_delay_sec"`
	RatePerSecond int    `mapstructure:"rate_per_second"`
	CacheTTLSec   int    `mapstructure:"cache_ttl_sec"`
}

type PricingConfig struct {
	// RiskFreeRate is annualized. The local reference rate runs high, so
	// the default is nowhere near US treasury levels.
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
}

type ServerConfig struct {
	Port                string `mapstructure:"port"`
	WSEnabled           bool   `mapstructure:"ws_enabled"`
	WSStreamIntervalSec int    `mapstructure:"ws_stream_interval_sec"`
}

type MockConfig struct {
	Enabled bool  `mapstructure:"enabled"`
	Seed    int64 `mapstructure:"seed"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

func (c *APIConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySec) * time.Second
}

func (c *APIConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

func (c *ServerConfig) WSStreamInterval() time.Duration {
	return time.Duration(c.WSStreamIntervalSec) * time.Second
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("api.base_url", "https://data912.com")
	v.SetDefault("api.stocks_path", "/live/arg_stocks")
	v.SetDefault("api.options_path", "/live/arg_options")
	v.SetDefault("api.timeout_sec", 10)
	v.SetDefault("api.retry_count", 3)
	v.SetDefault("api.retry_delay_sec", 1)
	v.SetDefault("api.rate_per_second", 5)
	v.SetDefault("api.cache_ttl_sec", 20)
	v.SetDefault("pricing.risk_free_rate", 0.35)
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.ws_enabled", true)
	v.SetDefault("server.ws_stream_interval_sec", 5)
	v.SetDefault("mock.enabled", false)
	v.SetDefault("mock.seed", 1)
	v.SetDefault("tickers", []string{"GGAL", "YPFD", "PAMP", "COME", "ALUA", "TECO2"})
	v.SetDefault("logging.level", "info")

	// Environment variable support
	v.SetEnvPrefix("BYMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.RatePerSecond < 1 {
		return fmt.Errorf("api.rate_per_second must be >= 1")
	}
	if c.API.RetryCount < 0 {
		return fmt.Errorf("api.retry_count must be >= 0")
	}
	if c.Pricing.RiskFreeRate < 0 {
		return fmt.Errorf("pricing.risk_free_rate must be >= 0")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if len(c.Tickers) == 0 {
		return fmt.Errorf("at least one ticker is required")
	}
	return nil
}

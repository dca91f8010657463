package config

import (
	"fmt"
	"os"
	"strings"

	"tradingengine/internal/ports"
	"tradingengine/internal/strategy/indicators"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	Binance  BinanceConfig
	Storage  StorageConfig
	Watch    WatchConfig
	Analysis AnalysisConfig
}

type AppConfig struct {
	Env             string `envconfig:"APP_ENV" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	Symbol          string `envconfig:"SYMBOL" default:"BTCUSDT"`
	Interval        string `envconfig:"INTERVAL" default:"1h"`
	AnalysisProfile string `envconfig:"ANALYSIS_PROFILE"` // Optional YAML overlay of Analysis
}

// BinanceConfig configures the market data source. Keys are optional; the
// klines endpoints are public.
type BinanceConfig struct {
	APIKey            string  `envconfig:"BINANCE_API_KEY"`
	SecretKey         string  `envconfig:"BINANCE_API_SECRET"`
	IsTestnet         bool    `envconfig:"IS_TESTNET" default:"false"`
	RequestsPerSecond float64 `envconfig:"BINANCE_REQUESTS_PER_SECOND" default:"5"`
}

type StorageConfig struct {
	DBPath string `envconfig:"DB_PATH" default:"./data/klines.db"`
}

type WatchConfig struct {
	Cron        string `envconfig:"WATCH_CRON" default:"@every 5m"`
	Lookback    int    `envconfig:"WATCH_LOOKBACK" default:"500"` // Most recent stored klines per run
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
}

// AnalysisConfig holds the pipeline periods and volume profile settings.
type AnalysisConfig struct {
	SMAPeriod        int     `envconfig:"SMA_PERIOD" default:"20" yaml:"sma_period"`
	EMAFastPeriod    int     `envconfig:"EMA_FAST_PERIOD" default:"12" yaml:"ema_fast_period"`
	EMASlowPeriod    int     `envconfig:"EMA_SLOW_PERIOD" default:"26" yaml:"ema_slow_period"`
	RSIPeriod        int     `envconfig:"RSI_PERIOD" default:"14" yaml:"rsi_period"`
	MACDFastPeriod   int     `envconfig:"MACD_FAST_PERIOD" default:"12" yaml:"macd_fast_period"`
	MACDSlowPeriod   int     `envconfig:"MACD_SLOW_PERIOD" default:"26" yaml:"macd_slow_period"`
	MACDSignalPeriod int     `envconfig:"MACD_SIGNAL_PERIOD" default:"14" yaml:"macd_signal_period"`
	ATRPeriod        int     `envconfig:"ATR_PERIOD" default:"14" yaml:"atr_period"`
	Rows             int     `envconfig:"PROFILE_ROWS" default:"10" yaml:"rows"`
	ValueArea        float64 `envconfig:"VALUE_AREA" default:"0.7" yaml:"value_area"`
}

// Indicators returns the indicator engine configuration.
func (a AnalysisConfig) Indicators() indicators.Config {
	return indicators.Config{
		SMAPeriod:        a.SMAPeriod,
		EMAFastPeriod:    a.EMAFastPeriod,
		EMASlowPeriod:    a.EMASlowPeriod,
		RSIPeriod:        a.RSIPeriod,
		MACDFastPeriod:   a.MACDFastPeriod,
		MACDSlowPeriod:   a.MACDSlowPeriod,
		MACDSignalPeriod: a.MACDSignalPeriod,
		ATRPeriod:        a.ATRPeriod,
	}
}

var validIntervals = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// LoadConfig loads configuration from environment variables (.env file), then
// applies the analysis profile when ANALYSIS_PROFILE names one.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to process env config: %w", ports.ErrInvalidConfiguration, err)
	}

	if cfg.App.AnalysisProfile != "" {
		if err := LoadProfile(cfg.App.AnalysisProfile, &cfg.Analysis); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadProfile overlays the YAML file at path onto analysis. Keys absent from
// the file keep their current values.
func LoadProfile(path string, analysis *AnalysisConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading analysis profile %s: %w", ports.ErrInvalidConfiguration, path, err)
	}
	if err := yaml.Unmarshal(data, analysis); err != nil {
		return fmt.Errorf("%w: parsing analysis profile %s: %w", ports.ErrInvalidConfiguration, path, err)
	}
	return nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string // Collect validation errors

	if c.App.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	if !validIntervals[c.App.Interval] {
		errs = append(errs, fmt.Sprintf("INTERVAL %q is not a supported kline interval", c.App.Interval))
	}

	if c.Binance.RequestsPerSecond <= 0 {
		errs = append(errs, "BINANCE_REQUESTS_PER_SECOND must be positive")
	}
	if c.Storage.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	if c.Watch.Cron == "" {
		errs = append(errs, "WATCH_CRON must be set")
	}
	if c.Watch.Lookback <= 0 {
		errs = append(errs, "WATCH_LOOKBACK must be positive")
	}

	a := c.Analysis
	for _, p := range []struct {
		key   string
		value int
	}{
		{"SMA_PERIOD", a.SMAPeriod},
		{"EMA_FAST_PERIOD", a.EMAFastPeriod},
		{"EMA_SLOW_PERIOD", a.EMASlowPeriod},
		{"RSI_PERIOD", a.RSIPeriod},
		{"MACD_FAST_PERIOD", a.MACDFastPeriod},
		{"MACD_SLOW_PERIOD", a.MACDSlowPeriod},
		{"MACD_SIGNAL_PERIOD", a.MACDSignalPeriod},
		{"ATR_PERIOD", a.ATRPeriod},
		{"PROFILE_ROWS", a.Rows},
	} {
		if p.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive", p.key))
		}
	}
	if a.ValueArea <= 0 || a.ValueArea > 1 {
		errs = append(errs, "VALUE_AREA must be in (0, 1]")
	}

	if c.Watch.Lookback > 0 && c.Watch.Lookback < a.Indicators().RequiredDataPoints() {
		errs = append(errs, fmt.Sprintf("WATCH_LOOKBACK must cover the longest period (%d)", a.Indicators().RequiredDataPoints()))
	}

	// Combine validation errors
	if len(errs) > 0 {
		return fmt.Errorf("%w: configuration validation failed: %s", ports.ErrInvalidConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

package indicators

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
)

// Config holds the periods of every indicator the engine computes.
type Config struct {
	SMAPeriod        int `yaml:"sma_period"`
	EMAFastPeriod    int `yaml:"ema_fast_period"`
	EMASlowPeriod    int `yaml:"ema_slow_period"`
	RSIPeriod        int `yaml:"rsi_period"`
	MACDFastPeriod   int `yaml:"macd_fast_period"`
	MACDSlowPeriod   int `yaml:"macd_slow_period"`
	MACDSignalPeriod int `yaml:"macd_signal_period"`
	ATRPeriod        int `yaml:"atr_period"`
}

// DefaultConfig returns the periods used when a caller configures nothing.
func DefaultConfig() Config {
	return Config{
		SMAPeriod:        20,
		EMAFastPeriod:    12,
		EMASlowPeriod:    26,
		RSIPeriod:        14,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 14,
		ATRPeriod:        14,
	}
}

// Validate rejects non-positive periods.
func (c Config) Validate() error {
	var errs []string
	for _, p := range c.periods() {
		if p.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive (got %d)", p.name, p.value))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ports.ErrInvalidConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

// RequiredDataPoints returns the minimum number of klines needed for calculation.
func (c Config) RequiredDataPoints() int {
	maxPeriod := 0
	for _, p := range c.periods() {
		if p.value > maxPeriod {
			maxPeriod = p.value
		}
	}
	return maxPeriod
}

type namedPeriod struct {
	name  string
	value int
}

func (c Config) periods() []namedPeriod {
	return []namedPeriod{
		{"sma_period", c.SMAPeriod},
		{"ema_fast_period", c.EMAFastPeriod},
		{"ema_slow_period", c.EMASlowPeriod},
		{"rsi_period", c.RSIPeriod},
		{"macd_fast_period", c.MACDFastPeriod},
		{"macd_slow_period", c.MACDSlowPeriod},
		{"macd_signal_period", c.MACDSignalPeriod},
		{"atr_period", c.ATRPeriod},
	}
}

// ValidateSeries checks that every bar is present, carries all OHLCV fields
// and opens strictly after the bar before it.
func ValidateSeries(klines []*domain.Kline) error {
	if len(klines) == 0 {
		return fmt.Errorf("%w: empty price series", ports.ErrInsufficientData)
	}
	for i, k := range klines {
		if k == nil {
			return fmt.Errorf("%w: bar %d is nil", ports.ErrMissingColumn, i)
		}
		if field := k.MissingField(); field != "" {
			return fmt.Errorf("%w: bar %d has no %s value", ports.ErrMissingColumn, i, field)
		}
		if i > 0 && !k.OpenTime.After(klines[i-1].OpenTime) {
			return fmt.Errorf("%w: bar %d opens at %s, not after %s", ports.ErrUnorderedSeries,
				i, k.OpenTime.Format(time.RFC3339), klines[i-1].OpenTime.Format(time.RFC3339))
		}
	}
	return nil
}

// Compute derives the full indicator set from a kline series. The input is
// never modified.
func Compute(ctx context.Context, klines []*domain.Kline, cfg Config) (*domain.IndicatorSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSeries(klines); err != nil {
		return nil, err
	}
	if required := cfg.RequiredDataPoints(); len(klines) < required {
		return nil, fmt.Errorf("%w: %d bars, need at least %d", ports.ErrInsufficientData, len(klines), required)
	}

	closes := domain.Closes(klines)
	macd, signal, hist := MACD(closes, cfg.MACDFastPeriod, cfg.MACDSlowPeriod, cfg.MACDSignalPeriod)
	tr := TrueRange(klines)

	return &domain.IndicatorSet{
		TypicalPrice: TypicalPrice(klines),
		SMA:          SMA(closes, cfg.SMAPeriod),
		EMAFast:      EMA(closes, cfg.EMAFastPeriod),
		EMASlow:      EMA(closes, cfg.EMASlowPeriod),
		RSI:          RSI(closes, cfg.RSIPeriod),
		MACD:         macd,
		Signal:       signal,
		MACDHist:     hist,
		TrueRange:    tr,
		ATR:          SMA(tr, cfg.ATRPeriod),
		VWAP:         VWAP(klines),
		SwingHighs:   SwingHighs(klines),
		SwingLows:    SwingLows(klines),
	}, nil
}

// TypicalPrice returns (high + low + close) / 3 for every bar.
func TypicalPrice(klines []*domain.Kline) domain.Series {
	out := make(domain.Series, len(klines))
	for i, k := range klines {
		out[i] = k.TypicalPrice()
	}
	return out
}

func undefined(n int) domain.Series {
	out := make(domain.Series, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

package indicators

import (
	"fmt"
	"math"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
)

// TrueRange returns the true range of every bar. The first bar has no
// previous close, so its range is high minus low.
func TrueRange(klines []*domain.Kline) domain.Series {
	out := make(domain.Series, len(klines))
	if len(klines) == 0 {
		return out
	}
	out[0] = klines[0].High - klines[0].Low
	for i := 1; i < len(klines); i++ {
		high := klines[i].High
		low := klines[i].Low
		prevClose := klines[i-1].Close

		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. |Current High - Previous Close|
		// 3. |Current Low - Previous Close|
		out[i] = math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
	}
	return out
}

// ATR is the rolling mean of the true range over period bars.
func ATR(klines []*domain.Kline, period int) domain.Series {
	return SMA(TrueRange(klines), period)
}

// AverageATR reduces the ATR series to the single volatility figure used for
// stop-loss and take-profit placement: the mean of every defined ATR value.
func AverageATR(klines []*domain.Kline, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: atr period must be positive (got %d)", ports.ErrInvalidConfiguration, period)
	}
	if err := ValidateSeries(klines); err != nil {
		return 0, err
	}
	if len(klines) < period {
		return 0, fmt.Errorf("%w: not enough data points for ATR calculation: need %d, got %d",
			ports.ErrInsufficientData, period, len(klines))
	}
	return ATR(klines, period).Mean(), nil
}

package indicators

import (
	"math"

	"tradingengine/internal/domain"

	"github.com/markcheno/go-talib"
)

// SMA returns the simple rolling mean of values. The first period-1 entries
// are undefined, as is the whole series when it is shorter than period.
func SMA(values []float64, period int) domain.Series {
	out := undefined(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sma := talib.Sma(values, period)
	for i := period - 1; i < len(values); i++ {
		out[i] = sma[i]
	}
	return out
}

// EMA returns the exponential moving average of values with smoothing factor
// 2/(period+1). The average is seeded with the first defined value, and the
// first period-1 defined positions are left undefined.
func EMA(values []float64, period int) domain.Series {
	out := undefined(len(values))
	if period <= 0 {
		return out
	}
	start := -1
	for i, v := range values {
		if !math.IsNaN(v) {
			start = i
			break
		}
	}
	if start < 0 {
		return out
	}

	multiplier := 2.0 / float64(period+1)
	ema := values[start]
	for i := start; i < len(values); i++ {
		if i > start {
			ema = (values[i]-ema)*multiplier + ema
		}
		if i-start >= period-1 {
			out[i] = ema
		}
	}
	return out
}

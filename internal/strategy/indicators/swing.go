package indicators

import (
	"math"

	"tradingengine/internal/domain"
)

const swingPeriod = 5

// SwingHighs returns the bars whose high exceeds both its own 5-period SMA of
// highs and the previous high.
func SwingHighs(klines []*domain.Kline) []domain.SwingPoint {
	highs := domain.Highs(klines)
	return swings(highs, func(v, ma, prev float64) bool { return v > ma && v > prev })
}

// SwingLows returns the bars whose low is below both its own 5-period SMA of
// lows and the previous low.
func SwingLows(klines []*domain.Kline) []domain.SwingPoint {
	lows := domain.Lows(klines)
	return swings(lows, func(v, ma, prev float64) bool { return v < ma && v < prev })
}

func swings(values []float64, qualifies func(v, ma, prev float64) bool) []domain.SwingPoint {
	ma := SMA(values, swingPeriod)
	var out []domain.SwingPoint
	for i := 1; i < len(values); i++ {
		if math.IsNaN(ma[i]) {
			continue
		}
		if qualifies(values[i], ma[i], values[i-1]) {
			out = append(out, domain.SwingPoint{Index: i, Value: values[i]})
		}
	}
	return out
}

package indicators

import (
	"tradingengine/internal/domain"

	"github.com/markcheno/go-talib"
)

// RSI computes the Relative Strength Index of closes using Wilder's smoothing.
// The first value appears at index period, once period price changes exist.
// It is 50 while no price has changed yet.
func RSI(closes []float64, period int) domain.Series {
	out := undefined(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}
	if period == 1 {
		// talib.Rsi needs at least two periods; with one the averages are the last change.
		for i := 1; i < len(closes); i++ {
			out[i] = directionRSI(closes[i] - closes[i-1])
		}
		return out
	}

	rsi := talib.Rsi(closes, period)
	moved := false
	for i := 1; i < len(closes); i++ {
		if closes[i] != closes[i-1] {
			moved = true
		}
		if i < period {
			continue
		}
		if !moved {
			out[i] = 50 // Neutral if no change
			continue
		}
		out[i] = rsi[i]
	}
	return out
}

func directionRSI(change float64) float64 {
	switch {
	case change > 0:
		return 100
	case change < 0:
		return 0
	}
	return 50
}

// Package bias classifies the directional bias of a kline series from its
// moving average crossovers, momentum oscillators and volume trend.
package bias

import (
	"fmt"
	"math"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
)

const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// Crossover is one detected crossing event.
type Crossover struct {
	Index     int
	Direction domain.Direction
}

// Classify derives the full bias snapshot from a series and its indicators.
func Classify(klines []*domain.Kline, set *domain.IndicatorSet) (domain.BiasResult, error) {
	if set == nil {
		return domain.BiasResult{}, fmt.Errorf("%w: indicator set is required", ports.ErrInsufficientData)
	}
	if set.Len() != len(klines) {
		return domain.BiasResult{}, fmt.Errorf("%w: indicator set covers %d bars, series has %d",
			ports.ErrInsufficientData, set.Len(), len(klines))
	}

	closes := domain.Closes(klines)
	smaCross := LastCrossover(SMACrossovers(closes, set.SMA))
	emaCross := LastCrossover(EMACrossovers(set.EMAFast, set.EMASlow))

	trend := TrendBias(smaCross, emaCross)
	momentum := MomentumBias(set.MACDHist, set.RSI)
	volume := VolumeBias(domain.Volumes(klines))

	return domain.BiasResult{
		Trend:    trend,
		Momentum: momentum,
		Volume:   volume,
		Overall:  Combine(trend, momentum, volume),
	}, nil
}

// SMACrossovers scans closes against the SMA of the previous bar. A bar is a
// bullish crossing when the previous close was at or below that SMA and the
// current close is above it; bearish crossings mirror the rule.
func SMACrossovers(closes []float64, sma domain.Series) []Crossover {
	return crossovers(closes, sma)
}

// EMACrossovers applies the same rule to the fast EMA against the slow EMA.
func EMACrossovers(fast, slow domain.Series) []Crossover {
	return crossovers(fast, slow)
}

// crossovers compares line[i] and line[i-1] with ref[i-1]. Comparisons with
// undefined values are false, so warm-up bars never produce events.
func crossovers(line []float64, ref domain.Series) []Crossover {
	n := len(line)
	if len(ref) < n {
		n = len(ref)
	}
	var events []Crossover
	for i := 1; i < n; i++ {
		prevRef := ref[i-1]
		switch {
		case line[i] > prevRef && line[i-1] <= prevRef:
			events = append(events, Crossover{Index: i, Direction: domain.DirectionBullish})
		case line[i] < prevRef && line[i-1] >= prevRef:
			events = append(events, Crossover{Index: i, Direction: domain.DirectionBearish})
		}
	}
	return events
}

// LastCrossover returns the direction of the most recent event, or neutral.
func LastCrossover(events []Crossover) domain.Direction {
	if len(events) == 0 {
		return domain.DirectionNeutral
	}
	return events[len(events)-1].Direction
}

// TrendBias combines the SMA and EMA crossover directions.
func TrendBias(sma, ema domain.Direction) domain.TrendBias {
	switch {
	case sma == domain.DirectionBullish && ema == domain.DirectionBullish:
		return domain.TrendBullish
	case sma == domain.DirectionBearish && ema == domain.DirectionBearish:
		return domain.TrendBearish
	case sma == domain.DirectionBullish && ema == domain.DirectionBearish:
		return domain.TrendOverbought
	case sma == domain.DirectionBearish && ema == domain.DirectionBullish:
		return domain.TrendOversold
	default:
		return domain.TrendNeutral
	}
}

// MomentumBias is bullish only for a positive mean histogram with an oversold
// mean RSI, and bearish only for a negative mean histogram with an overbought
// mean RSI. Undefined entries are left out of both means.
func MomentumBias(hist, rsi domain.Series) domain.MomentumBias {
	histMean := hist.Mean()
	rsiMean := rsi.Mean()
	switch {
	case histMean > 0 && rsiMean < rsiOversold:
		return domain.MomentumBullish
	case histMean < 0 && rsiMean > rsiOverbought:
		return domain.MomentumBearish
	default:
		return domain.MomentumNeutral
	}
}

// VolumeBias follows the sign of the mean bar-to-bar volume change.
func VolumeBias(volumes []float64) domain.VolumeBias {
	if len(volumes) < 2 {
		return domain.VolumeNeutral
	}
	var sum float64
	for i := 1; i < len(volumes); i++ {
		sum += volumes[i] - volumes[i-1]
	}
	mean := sum / float64(len(volumes)-1)
	switch {
	case math.IsNaN(mean):
		return domain.VolumeNeutral
	case mean > 0:
		return domain.VolumeBullish
	case mean < 0:
		return domain.VolumeBearish
	default:
		return domain.VolumeNeutral
	}
}

// Combine applies the overall bias rules in order; the first match wins.
func Combine(trend domain.TrendBias, momentum domain.MomentumBias, volume domain.VolumeBias) domain.OverallBias {
	trendUp := trend == domain.TrendBullish
	trendDown := trend == domain.TrendBearish
	momUp := momentum == domain.MomentumBullish
	momDown := momentum == domain.MomentumBearish

	switch {
	case trendUp && momUp && volume == domain.VolumeBullish:
		return domain.StrongBullish
	case trendDown && momDown && volume == domain.VolumeBearish:
		return domain.StrongBearish
	case trendUp && momUp:
		return domain.ModerateBullish
	case trendDown && momDown:
		return domain.ModerateBearish
	case trendUp:
		return domain.WeakBullish
	case trendDown:
		return domain.WeakBearish
	case momUp:
		return domain.MomentumBullishOnly
	case momDown:
		return domain.MomentumBearishOnly
	default:
		return domain.NeutralBias
	}
}

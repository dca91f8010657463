// Package levels builds the price level map from swing points, the trailing
// SMA, Fibonacci retracements and VWAP extremes.
package levels

import (
	"fmt"
	"math"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
)

// Fibonacci retracement ratios, measured up from the series low.
var fibRatios = []struct {
	ratio float64
	kind  domain.LevelKind
}{
	{0.382, domain.LevelFib382},
	{0.5, domain.LevelFib50},
	{0.618, domain.LevelFib618},
}

// Candidate is a proposed level before deduplication.
type Candidate struct {
	Price float64
	Kind  domain.LevelKind
}

// Aggregate runs the detectors in their fixed order (support/resistance,
// Fibonacci, volume) and combines the candidates into one level map.
func Aggregate(klines []*domain.Kline, set *domain.IndicatorSet) (*domain.PriceLevels, error) {
	if len(klines) == 0 {
		return nil, fmt.Errorf("%w: no bars to derive levels from", ports.ErrInsufficientData)
	}
	if set == nil || set.Len() != len(klines) {
		return nil, fmt.Errorf("%w: indicator set does not cover the series", ports.ErrInsufficientData)
	}
	return Combine(
		SupportResistance(set),
		Fibonacci(klines),
		VolumeExtremes(set.VWAP),
	), nil
}

// SupportResistance tags every swing high as resistance, every swing low as
// support and the latest SMA value as dynamic.
func SupportResistance(set *domain.IndicatorSet) []Candidate {
	out := make([]Candidate, 0, len(set.SwingHighs)+len(set.SwingLows)+1)
	for _, p := range set.SwingHighs {
		out = append(out, Candidate{Price: p.Value, Kind: domain.LevelResistance})
	}
	for _, p := range set.SwingLows {
		out = append(out, Candidate{Price: p.Value, Kind: domain.LevelSupport})
	}
	out = append(out, Candidate{Price: set.SMA.Last(), Kind: domain.LevelDynamic})
	return out
}

// Fibonacci places retracements between the highest high and the lowest low
// of the series. Each level is proposed twice: once with its Fibonacci label
// and once as resistance.
func Fibonacci(klines []*domain.Kline) []Candidate {
	if len(klines) == 0 {
		return nil
	}
	maxHigh := klines[0].High
	minLow := klines[0].Low
	for _, k := range klines[1:] {
		maxHigh = math.Max(maxHigh, k.High)
		minLow = math.Min(minLow, k.Low)
	}
	diff := maxHigh - minLow

	out := make([]Candidate, 0, 2*len(fibRatios))
	for _, f := range fibRatios {
		out = append(out, Candidate{Price: minLow + f.ratio*diff, Kind: f.kind})
	}
	for _, f := range fibRatios {
		out = append(out, Candidate{Price: minLow + f.ratio*diff, Kind: domain.LevelResistance})
	}
	return out
}

// VolumeExtremes tags strict local maxima of the VWAP as volume resistance
// and strict local minima as volume support.
func VolumeExtremes(vwap domain.Series) []Candidate {
	var out []Candidate
	for i := 1; i < len(vwap)-1; i++ {
		prev, cur, next := vwap[i-1], vwap[i], vwap[i+1]
		switch {
		case cur > prev && cur > next:
			out = append(out, Candidate{Price: cur, Kind: domain.LevelVolumeResistance})
		case cur < prev && cur < next:
			out = append(out, Candidate{Price: cur, Kind: domain.LevelVolumeSupport})
		}
	}
	return out
}

// Combine drops repeated (price, kind) tuples and inserts the rest in order,
// so a later kind for the same price replaces the earlier one. Undefined and
// infinite prices are skipped.
func Combine(groups ...[]Candidate) *domain.PriceLevels {
	levels := domain.NewPriceLevels()
	seen := make(map[Candidate]struct{})
	for _, group := range groups {
		for _, c := range group {
			if math.IsNaN(c.Price) || math.IsInf(c.Price, 0) {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			levels.Set(c.Price, c.Kind)
		}
	}
	return levels
}

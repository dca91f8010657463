package indicators

import "tradingengine/internal/domain"

// VWAP returns cumulative typical price divided by cumulative volume, running
// from the first bar of the series without any session reset. Bars before any
// volume has traded yield NaN or +Inf.
func VWAP(klines []*domain.Kline) domain.Series {
	out := make(domain.Series, len(klines))
	var cumPrice, cumVolume float64
	for i, k := range klines {
		cumPrice += k.TypicalPrice()
		cumVolume += k.Volume
		out[i] = cumPrice / cumVolume
	}
	return out
}

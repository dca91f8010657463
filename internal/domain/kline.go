package domain

import (
	"math"
	"time"
)

// Kline is a single OHLCV bar. OpenTime is the bar timestamp used for
// ordering and session filtering.
type Kline struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string    // Trading symbol
	Interval  string    // Kline interval (e.g., "1m", "1h")
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// TypicalPrice returns (high + low + close) / 3.
func (k *Kline) TypicalPrice() float64 {
	return (k.High + k.Low + k.Close) / 3
}

// MissingField returns the name of the first OHLCV field holding NaN, or "".
func (k *Kline) MissingField() string {
	switch {
	case math.IsNaN(k.Open):
		return "open"
	case math.IsNaN(k.High):
		return "high"
	case math.IsNaN(k.Low):
		return "low"
	case math.IsNaN(k.Close):
		return "close"
	case math.IsNaN(k.Volume):
		return "volume"
	}
	return ""
}

// Closes extracts the close prices of a series.
func Closes(klines []*Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		out[i] = k.Close
	}
	return out
}

// Highs extracts the high prices of a series.
func Highs(klines []*Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		out[i] = k.High
	}
	return out
}

// Lows extracts the low prices of a series.
func Lows(klines []*Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		out[i] = k.Low
	}
	return out
}

// Volumes extracts the volumes of a series.
func Volumes(klines []*Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		out[i] = k.Volume
	}
	return out
}

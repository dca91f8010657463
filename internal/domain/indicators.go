package domain

import (
	"bytes"
	"math"
	"strconv"
)

// Series is a numeric sequence aligned with a kline series. NaN marks an
// entry with no value yet.
type Series []float64

// Last returns the final entry, or NaN for an empty series.
func (s Series) Last() float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

// Mean averages the defined entries. It returns NaN when none are defined.
func (s Series) Mean() float64 {
	var sum float64
	var n int
	for _, v := range s {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Defined counts the entries that carry a value.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// MarshalJSON encodes undefined and infinite entries as null.
func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// SwingPoint is a qualifying swing high or low together with the bar index
// that produced it.
type SwingPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// IndicatorSet holds every derived series of one pipeline run.
type IndicatorSet struct {
	TypicalPrice Series `json:"typical_price"`
	SMA          Series `json:"sma"`
	EMAFast      Series `json:"ema_fast"`
	EMASlow      Series `json:"ema_slow"`
	RSI          Series `json:"rsi"`
	MACD         Series `json:"macd"`
	Signal       Series `json:"signal"`
	MACDHist     Series `json:"macd_hist"`
	TrueRange    Series `json:"tr"`
	ATR          Series `json:"atr"`
	VWAP         Series `json:"vwap"`

	SwingHighs []SwingPoint `json:"swing_highs"`
	SwingLows  []SwingPoint `json:"swing_lows"`
}

// Len returns the length of the aligned series.
func (s *IndicatorSet) Len() int {
	return len(s.SMA)
}

// SwingHighValues returns the qualifying swing high values in bar order.
func (s *IndicatorSet) SwingHighValues() []float64 {
	return swingValues(s.SwingHighs)
}

// SwingLowValues returns the qualifying swing low values in bar order.
func (s *IndicatorSet) SwingLowValues() []float64 {
	return swingValues(s.SwingLows)
}

func swingValues(points []SwingPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

package indicators

import (
	"errors"
	"math"
	"testing"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
)

func atrBars() []*domain.Kline {
	return []*domain.Kline{
		{OpenTime: baseTime, High: 10, Low: 8, Close: 9},
		{OpenTime: baseTime.Add(1), High: 12, Low: 9, Close: 11},
		{OpenTime: baseTime.Add(2), High: 11, Low: 7, Close: 8},
	}
}

func TestTrueRange(t *testing.T) {
	assertSeries(t, []float64{2, 3, 4}, TrueRange(atrBars()))
}

func TestATR(t *testing.T) {
	assertSeries(t, []float64{math.NaN(), 2.5, 3.5}, ATR(atrBars(), 2))
}

func TestAverageATR(t *testing.T) {
	tests := []struct {
		name          string
		klines        []*domain.Kline
		period        int
		expectedValue float64
		expectedErr   error
	}{
		{
			name:          "mean of defined values",
			klines:        atrBars(),
			period:        2,
			expectedValue: 3.0,
		},
		{
			name:        "insufficient data",
			klines:      atrBars(),
			period:      4,
			expectedErr: ports.ErrInsufficientData,
		},
		{
			name:        "invalid period",
			klines:      atrBars(),
			period:      0,
			expectedErr: ports.ErrInvalidConfiguration,
		},
		{
			name:        "empty series",
			period:      2,
			expectedErr: ports.ErrInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := AverageATR(tt.klines, tt.period)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("Expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(value-tt.expectedValue) > tolerance {
				t.Errorf("Expected value %f, got %f", tt.expectedValue, value)
			}
		})
	}
}

func TestVWAP(t *testing.T) {
	klines := flatBars([]float64{10, 20}, 0)
	klines[0].Volume = 1
	klines[1].Volume = 3
	assertSeries(t, []float64{10, 7.5}, VWAP(klines))
}

func TestVWAP_ZeroVolume(t *testing.T) {
	vwap := VWAP(flatBars([]float64{10, 10}, 0))
	for i, v := range vwap {
		if !math.IsInf(v, 1) {
			t.Errorf("index %d: expected +Inf for zero cumulative volume, got %f", i, v)
		}
	}
}

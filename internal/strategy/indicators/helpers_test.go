package indicators

import (
	"math"
	"testing"
	"time"

	"tradingengine/internal/domain"
)

const tolerance = 0.0001

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// flatBars builds bars whose open, high, low and close all equal the given close.
func flatBars(closes []float64, volume float64) []*domain.Kline {
	klines := make([]*domain.Kline, len(closes))
	for i, c := range closes {
		klines[i] = &domain.Kline{
			OpenTime: baseTime.Add(time.Duration(i) * time.Hour),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			Volume:   volume,
		}
	}
	return klines
}

// assertSeries compares a series with expectations, where NaN in want means undefined.
func assertSeries(t *testing.T, want []float64, got domain.Series) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("Expected length %d, got %d", len(want), len(got))
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("index %d: expected undefined, got %f", i, got[i])
			}
			continue
		}
		if math.Abs(got[i]-want[i]) > tolerance {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

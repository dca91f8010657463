package indicators

import (
	"testing"

	"tradingengine/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSwingHighs(t *testing.T) {
	klines := flatBars([]float64{1, 2, 3, 4, 5, 6}, 1)

	got := SwingHighs(klines)
	assert.Equal(t, []domain.SwingPoint{{Index: 4, Value: 5}, {Index: 5, Value: 6}}, got)
	assert.Empty(t, SwingLows(klines), "a rising series has no swing lows")
}

func TestSwingLows(t *testing.T) {
	klines := flatBars([]float64{10, 10, 10, 10, 9, 11, 8}, 1)

	got := SwingLows(klines)
	// SMA5 of lows at index 4 is 9.8 and at index 6 is 9.6.
	assert.Equal(t, []domain.SwingPoint{{Index: 4, Value: 9}, {Index: 6, Value: 8}}, got)

	set := &domain.IndicatorSet{SwingLows: got}
	assert.Equal(t, []float64{9, 8}, set.SwingLowValues())
}

func TestSwings_ShortSeries(t *testing.T) {
	klines := flatBars([]float64{1, 2, 3}, 1)
	assert.Empty(t, SwingHighs(klines))
	assert.Empty(t, SwingLows(klines))
}

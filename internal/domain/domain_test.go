package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLevels(t *testing.T) {
	levels := NewPriceLevels()
	levels.Set(110, LevelResistance)
	levels.Set(95, LevelSupport)
	levels.Set(110, LevelFib50)

	assert.Equal(t, 2, levels.Len())
	kind, ok := levels.Kind(110)
	assert.True(t, ok)
	assert.Equal(t, LevelFib50, kind, "last assignment wins")

	_, ok = levels.Kind(42)
	assert.False(t, ok)

	assert.Equal(t, []float64{110, 95}, levels.Prices(), "first insertion position is kept")
	assert.Equal(t, []float64{95, 110}, levels.Sorted())

	data, err := json.Marshal(levels)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"price":95,"kind":"support"},{"price":110,"kind":"fib_50"}]`, string(data))
}

func TestPriceLevels_NilIsEmpty(t *testing.T) {
	var levels *PriceLevels

	assert.Equal(t, 0, levels.Len())
	_, ok := levels.Kind(100)
	assert.False(t, ok)
	assert.Empty(t, levels.Prices())
	assert.Empty(t, levels.Sorted())
}

func TestSeries(t *testing.T) {
	nan := math.NaN()
	s := Series{nan, nan, 2, 4}

	assert.Equal(t, 4.0, s.Last())
	assert.Equal(t, 3.0, s.Mean())
	assert.Equal(t, 2, s.Defined())
	assert.True(t, math.IsNaN(Series{}.Last()))
	assert.True(t, math.IsNaN(Series{nan}.Mean()))

	data, err := json.Marshal(Series{nan, 1.5, math.Inf(-1)})
	require.NoError(t, err)
	assert.Equal(t, `[null,1.5,null]`, string(data))

	data, err = json.Marshal(Series(nil))
	require.NoError(t, err)
	assert.Equal(t, `null`, string(data))
}

func TestPriceMap_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(PriceMap{110: 112, 100: 98})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"level":100,"price":98},{"level":110,"price":112}]`, string(data))
}

func TestKline(t *testing.T) {
	k := &Kline{OpenTime: time.Unix(0, 0), Open: 1, High: 6, Low: 3, Close: 3, Volume: 10}
	assert.Equal(t, 4.0, k.TypicalPrice())
	assert.Equal(t, "", k.MissingField())

	k.Close = math.NaN()
	assert.Equal(t, "close", k.MissingField())

	klines := []*Kline{{Close: 1, High: 2, Low: 0.5, Volume: 7}, {Close: 3, High: 4, Low: 2, Volume: 8}}
	assert.Equal(t, []float64{1, 3}, Closes(klines))
	assert.Equal(t, []float64{2, 4}, Highs(klines))
	assert.Equal(t, []float64{0.5, 2}, Lows(klines))
	assert.Equal(t, []float64{7, 8}, Volumes(klines))
}

func TestVolumeProfile_Distribution(t *testing.T) {
	start := time.Unix(0, 0).UTC()
	vp := &VolumeProfile{
		Distribution: []IntervalVolume{
			{Interval: TimeInterval{Index: 0, Start: start, End: start.Add(time.Hour)}, Volume: 5},
			{Interval: TimeInterval{Index: 1, Start: start.Add(time.Hour), End: start.Add(2 * time.Hour)}, Volume: 0},
		},
	}
	assert.Equal(t, map[string]float64{"time_interval_0": 5, "time_interval_1": 0}, vp.VolumeDistribution())
}

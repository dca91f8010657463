package volumeprofile

import (
	"testing"
	"time"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func hourlyBars(volumes ...float64) []*domain.Kline {
	klines := make([]*domain.Kline, len(volumes))
	for i, v := range volumes {
		klines[i] = &domain.Kline{
			OpenTime: base.Add(time.Duration(i) * time.Hour),
			Open:     100,
			High:     101,
			Low:      99,
			Close:    100,
			Volume:   v,
		}
	}
	return klines
}

func TestBuild(t *testing.T) {
	klines := hourlyBars(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	window := Window{Start: base, End: base.Add(9 * time.Hour)}

	profile, err := Build(klines, window, 3, DefaultValueArea)
	require.NoError(t, err)

	require.Len(t, profile.Intervals, 3)
	assert.Equal(t, base.Add(3*time.Hour), profile.Intervals[1].Start)
	assert.Equal(t, window.End, profile.Intervals[2].End)

	assert.Equal(t, map[string]float64{
		"time_interval_0": 6,
		"time_interval_1": 15,
		"time_interval_2": 34, // the bar exactly at the window end belongs to the last bucket
	}, profile.VolumeDistribution())
	assert.Equal(t, 55.0, profile.TotalVolume)
	assert.Equal(t, 10, profile.Bars)

	require.Len(t, profile.Ranked, 3)
	top := profile.Ranked[0]
	assert.Equal(t, 0, top.Rank)
	assert.Equal(t, 34.0, top.Volume)
	assert.Equal(t, "time_interval_2", top.Interval)
	assert.InDelta(t, 34.0/55*100, top.Percentage, 1e-9)
	assert.Equal(t, "time_interval_1", profile.Ranked[1].Interval)
	assert.Equal(t, "time_interval_0", profile.Ranked[2].Interval)
	assert.Equal(t, DefaultValueArea, profile.ValueAreaTarget)
}

func TestBuild_PartitionKeepsEmptyBuckets(t *testing.T) {
	klines := hourlyBars(5, 7, 11)
	window := Window{Start: base, End: base.Add(11 * time.Hour)}

	profile, err := Build(klines, window, 12, 0.7)
	require.NoError(t, err)

	require.Len(t, profile.Distribution, 12)
	var sum float64
	empty := 0
	for _, d := range profile.Distribution {
		sum += d.Volume
		if d.Volume == 0 {
			empty++
		}
	}
	assert.Equal(t, profile.TotalVolume, sum)
	assert.Equal(t, 9, empty)
}

func TestBuild_FiltersToWindow(t *testing.T) {
	klines := hourlyBars(100, 1, 2, 100)
	window := Window{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)}

	profile, err := Build(klines, window, 2, 0.7)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Bars)
	assert.Equal(t, 3.0, profile.TotalVolume)
}

func TestBuild_ValueArea(t *testing.T) {
	klines := hourlyBars(1, 3)
	klines[0].Close = 10
	klines[1].Close = 20

	profile, err := Build(klines, Window{Start: base, End: base.Add(time.Hour)}, 2, 0.7)
	require.NoError(t, err)

	// 10*1 + 20*(1+3)
	assert.Equal(t, 90.0, profile.ValueArea)
	assert.Equal(t, 90.0/4*100, profile.ValueAreaPercent)
}

func TestBuild_EqualVolumesKeepChronologicalRank(t *testing.T) {
	klines := hourlyBars(5, 5, 5)
	profile, err := Build(klines, Window{Start: base, End: base.Add(3 * time.Hour)}, 3, 0.7)
	require.NoError(t, err)

	for i, entry := range profile.Ranked {
		assert.Equal(t, i, entry.Rank)
		assert.Equal(t, domain.TimeInterval{Index: i}.Label(), entry.Interval)
	}
}

func TestBuild_Errors(t *testing.T) {
	window := Window{Start: base, End: base.Add(4 * time.Hour)}
	tests := []struct {
		name        string
		klines      []*domain.Kline
		window      Window
		rows        int
		valueArea   float64
		expectedErr error
	}{
		{"zero volume", hourlyBars(0, 0, 0), window, 10, 0.7, ports.ErrDivisionByZero},
		{"session without bars", hourlyBars(1, 2), Window{Start: base.Add(48 * time.Hour), End: base.Add(50 * time.Hour)}, 10, 0.7, ports.ErrInsufficientData},
		{"zero rows", hourlyBars(1, 2), window, 0, 0.7, ports.ErrInvalidConfiguration},
		{"value area above one", hourlyBars(1, 2), window, 10, 1.5, ports.ErrInvalidConfiguration},
		{"value area zero", hourlyBars(1, 2), window, 10, 0, ports.ErrInvalidConfiguration},
		{"inverted window", hourlyBars(1, 2), Window{Start: window.End, End: window.Start}, 10, 0.7, ports.ErrInvalidConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := Build(tt.klines, tt.window, tt.rows, tt.valueArea)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, profile)
		})
	}
}

func TestBuild_ZeroLengthWindow(t *testing.T) {
	klines := hourlyBars(4)
	profile, err := Build(klines, Window{Start: base, End: base}, 3, 0.7)
	require.NoError(t, err)
	assert.Equal(t, 4.0, profile.Distribution[0].Volume)
}

// Package volumeprofile buckets session volume into equal time intervals and
// ranks the intervals by traded volume.
package volumeprofile

import (
	"fmt"
	"sort"
	"time"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
)

const (
	DefaultRows      = 10
	DefaultValueArea = 0.7
)

// Window is the inclusive session range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Build computes the volume profile of the bars inside the window. valueArea
// is validated and echoed back; it does not drive any search.
func Build(klines []*domain.Kline, window Window, rows int, valueArea float64) (*domain.VolumeProfile, error) {
	if err := validate(window, rows, valueArea); err != nil {
		return nil, err
	}

	session := Filter(klines, window)
	if len(session) == 0 {
		return nil, fmt.Errorf("%w: no bars between %s and %s", ports.ErrInsufficientData,
			window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
	}

	var totalVolume float64
	for _, k := range session {
		totalVolume += k.Volume
	}
	if totalVolume == 0 {
		return nil, fmt.Errorf("%w: session has zero total volume", ports.ErrDivisionByZero)
	}

	intervals := Intervals(window, rows)
	distribution := Distribute(session, window, intervals)
	valueAreaVolume := ValueArea(session)

	return &domain.VolumeProfile{
		SessionStart:     window.Start,
		SessionEnd:       window.End,
		Bars:             len(session),
		Intervals:        intervals,
		Distribution:     distribution,
		Ranked:           Rank(distribution, totalVolume),
		TotalVolume:      totalVolume,
		ValueArea:        valueAreaVolume,
		ValueAreaPercent: valueAreaVolume / totalVolume * 100,
		ValueAreaTarget:  valueArea,
	}, nil
}

func validate(window Window, rows int, valueArea float64) error {
	if rows <= 0 {
		return fmt.Errorf("%w: rows must be positive (got %d)", ports.ErrInvalidConfiguration, rows)
	}
	if !(valueArea > 0 && valueArea <= 1) {
		return fmt.Errorf("%w: value area must be in (0, 1] (got %g)", ports.ErrInvalidConfiguration, valueArea)
	}
	if window.End.Before(window.Start) {
		return fmt.Errorf("%w: session end %s is before start %s", ports.ErrInvalidConfiguration,
			window.End.Format(time.RFC3339), window.Start.Format(time.RFC3339))
	}
	return nil
}

// Filter returns the bars whose open time lies inside the window.
func Filter(klines []*domain.Kline, window Window) []*domain.Kline {
	var out []*domain.Kline
	for _, k := range klines {
		if k != nil && window.Contains(k.OpenTime) {
			out = append(out, k)
		}
	}
	return out
}

// Intervals splits the window into rows contiguous buckets of equal length.
// The last bucket ends exactly at the window end.
func Intervals(window Window, rows int) []domain.TimeInterval {
	step := window.End.Sub(window.Start) / time.Duration(rows)
	out := make([]domain.TimeInterval, rows)
	for i := range out {
		start := window.Start.Add(time.Duration(i) * step)
		end := start.Add(step)
		if i == rows-1 {
			end = window.End
		}
		out[i] = domain.TimeInterval{Index: i, Start: start, End: end}
	}
	return out
}

// Distribute sums the session volume into the buckets. Buckets are half open
// except the last, so every bar lands in exactly one bucket and empty buckets
// keep a zero volume.
func Distribute(session []*domain.Kline, window Window, intervals []domain.TimeInterval) []domain.IntervalVolume {
	out := make([]domain.IntervalVolume, len(intervals))
	for i, iv := range intervals {
		out[i].Interval = iv
	}
	if len(intervals) == 0 {
		return out
	}
	step := window.End.Sub(window.Start) / time.Duration(len(intervals))
	for _, k := range session {
		idx := 0
		if step > 0 {
			idx = int(k.OpenTime.Sub(window.Start) / step)
		}
		if idx >= len(intervals) {
			idx = len(intervals) - 1
		}
		out[idx].Volume += k.Volume
	}
	return out
}

// Rank orders the buckets by volume, highest first. Equal volumes keep their
// chronological order.
func Rank(distribution []domain.IntervalVolume, totalVolume float64) []domain.ProfileEntry {
	sorted := make([]domain.IntervalVolume, len(distribution))
	copy(sorted, distribution)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Volume > sorted[j].Volume
	})

	out := make([]domain.ProfileEntry, len(sorted))
	for i, d := range sorted {
		out[i] = domain.ProfileEntry{
			Rank:       i,
			Volume:     d.Volume,
			Percentage: d.Volume / totalVolume * 100,
			Interval:   d.Interval.Label(),
		}
	}
	return out
}

// ValueArea sums close times cumulative volume over the session.
func ValueArea(session []*domain.Kline) float64 {
	var cumVolume, total float64
	for _, k := range session {
		cumVolume += k.Volume
		total += k.Close * cumVolume
	}
	return total
}

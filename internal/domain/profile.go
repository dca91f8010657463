package domain

import (
	"fmt"
	"time"
)

// TimeInterval is one bucket of a volume profile.
type TimeInterval struct {
	Index int       `json:"index"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Label returns the distribution key of the interval.
func (t TimeInterval) Label() string {
	return fmt.Sprintf("time_interval_%d", t.Index)
}

// IntervalVolume is the summed volume of one interval.
type IntervalVolume struct {
	Interval TimeInterval `json:"interval"`
	Volume   float64      `json:"volume"`
}

// ProfileEntry is one row of the volume-ranked breakdown. Rank 0 holds the
// busiest interval.
type ProfileEntry struct {
	Rank       int     `json:"rank"`
	Volume     float64 `json:"volume"`
	Percentage float64 `json:"percentage"`
	Interval   string  `json:"time_interval"`
}

// VolumeProfile is the volume distribution of a session.
type VolumeProfile struct {
	SessionStart     time.Time        `json:"session_start"`
	SessionEnd       time.Time        `json:"session_end"`
	Bars             int              `json:"bars"`
	Intervals        []TimeInterval   `json:"time_intervals"`
	Distribution     []IntervalVolume `json:"volume_distribution"`
	Ranked           []ProfileEntry   `json:"volume_profile"`
	TotalVolume      float64          `json:"total_volume"`
	ValueArea        float64          `json:"total_value_area"`
	ValueAreaPercent float64          `json:"value_area_percent"`
	ValueAreaTarget  float64          `json:"value_area_target"`
}

// VolumeDistribution returns the label to volume mapping.
func (v *VolumeProfile) VolumeDistribution() map[string]float64 {
	out := make(map[string]float64, len(v.Distribution))
	for _, d := range v.Distribution {
		out[d.Interval.Label()] = d.Volume
	}
	return out
}

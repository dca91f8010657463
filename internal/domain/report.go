package domain

import "time"

// AnalysisMode distinguishes session runs from strategy runs.
type AnalysisMode string

const (
	ModeSession  AnalysisMode = "session"
	ModeStrategy AnalysisMode = "strategy"
)

// Report is the complete result of one pipeline run. VolumeProfile is nil in
// strategy mode.
type Report struct {
	ID            string          `json:"id"`
	Mode          AnalysisMode    `json:"mode"`
	Symbol        string          `json:"symbol,omitempty"`
	Interval      string          `json:"interval,omitempty"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Bars          int             `json:"bars"`
	Indicators    *IndicatorSet   `json:"indicators"`
	PriceLevels   *PriceLevels    `json:"price_levels"`
	Bias          BiasResult      `json:"bias"`
	VolumeProfile *VolumeProfile  `json:"volume_profile,omitempty"`
	Signals       *Signals        `json:"trading_signals"`
	Risk          *RiskParameters `json:"risk_parameters"`
}

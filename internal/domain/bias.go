package domain

// Direction is the outcome of a crossover scan.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// TrendBias classifies the moving average crossovers.
type TrendBias string

const (
	TrendBullish    TrendBias = "bullish_trend"
	TrendBearish    TrendBias = "bearish_trend"
	TrendOverbought TrendBias = "overbought_trend"
	TrendOversold   TrendBias = "oversold_trend"
	TrendNeutral    TrendBias = "neutral_trend"
)

// MomentumBias classifies MACD histogram and RSI.
type MomentumBias string

const (
	MomentumBullish MomentumBias = "bullish_momentum"
	MomentumBearish MomentumBias = "bearish_momentum"
	MomentumNeutral MomentumBias = "neutral_momentum"
)

// VolumeBias classifies the bar-to-bar volume trend.
type VolumeBias string

const (
	VolumeBullish VolumeBias = "bullish_volume"
	VolumeBearish VolumeBias = "bearish_volume"
	VolumeNeutral VolumeBias = "neutral_volume"
)

// OverallBias is the combined classification.
type OverallBias string

const (
	StrongBullish       OverallBias = "strong_bullish"
	StrongBearish       OverallBias = "strong_bearish"
	ModerateBullish     OverallBias = "moderate_bullish"
	ModerateBearish     OverallBias = "moderate_bearish"
	WeakBullish         OverallBias = "weak_bullish"
	WeakBearish         OverallBias = "weak_bearish"
	MomentumBullishOnly OverallBias = "momentum_bullish"
	MomentumBearishOnly OverallBias = "momentum_bearish"
	NeutralBias         OverallBias = "neutral_bias"
)

// BiasResult is the bias snapshot of one run.
type BiasResult struct {
	Trend    TrendBias    `json:"trend_bias"`
	Momentum MomentumBias `json:"momentum_bias"`
	Volume   VolumeBias   `json:"volume_bias"`
	Overall  OverallBias  `json:"overall_bias"`
}

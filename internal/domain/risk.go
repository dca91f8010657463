package domain

import (
	"encoding/json"
	"sort"
)

// RiskReward summarises the distance to the first support and resistance.
type RiskReward struct {
	Risk   float64 `json:"risk"`
	Reward float64 `json:"reward"`
	Ratio  float64 `json:"ratio"`
}

// PriceMap maps a level price to a derived price.
type PriceMap map[float64]float64

// MarshalJSON encodes the map as a list ordered by level price, since JSON
// object keys cannot be floats.
func (m PriceMap) MarshalJSON() ([]byte, error) {
	type entry struct {
		Level float64 `json:"level"`
		Price float64 `json:"price"`
	}
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	out := make([]entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, entry{Level: k, Price: m[k]})
	}
	return json.Marshal(out)
}

// RiskParameters holds stop-loss and take-profit prices keyed by level price.
type RiskParameters struct {
	ATR        float64    `json:"atr"`
	StopLoss   PriceMap   `json:"stop_loss"`
	TakeProfit PriceMap   `json:"take_profit"`
	RiskReward RiskReward `json:"risk_reward"`
}

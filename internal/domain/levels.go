package domain

import (
	"encoding/json"
	"sort"
	"strconv"
)

// LevelKind tags a price level with the detector that produced it.
type LevelKind string

const (
	LevelSupport          LevelKind = "support"
	LevelResistance       LevelKind = "resistance"
	LevelDynamic          LevelKind = "dynamic"
	LevelFib382           LevelKind = "fib_38.2"
	LevelFib50            LevelKind = "fib_50"
	LevelFib618           LevelKind = "fib_61.8"
	LevelVolumeSupport    LevelKind = "volume_support"
	LevelVolumeResistance LevelKind = "volume_resistance"
)

// PriceLevels maps each distinct price to exactly one kind. Setting a price
// that already exists replaces its kind and keeps its original position.
type PriceLevels struct {
	kinds map[float64]LevelKind
	order []float64
}

// NewPriceLevels creates an empty level map.
func NewPriceLevels() *PriceLevels {
	return &PriceLevels{kinds: make(map[float64]LevelKind)}
}

// Set assigns kind to price.
func (p *PriceLevels) Set(price float64, kind LevelKind) {
	if _, ok := p.kinds[price]; !ok {
		p.order = append(p.order, price)
	}
	p.kinds[price] = kind
}

// Kind returns the kind stored for price. The read methods treat a nil
// receiver as an empty set.
func (p *PriceLevels) Kind(price float64) (LevelKind, bool) {
	if p == nil {
		return "", false
	}
	k, ok := p.kinds[price]
	return k, ok
}

// Len returns the number of distinct prices.
func (p *PriceLevels) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// Prices returns the prices in insertion order.
func (p *PriceLevels) Prices() []float64 {
	if p == nil {
		return nil
	}
	out := make([]float64, len(p.order))
	copy(out, p.order)
	return out
}

// Sorted returns the prices in ascending order.
func (p *PriceLevels) Sorted() []float64 {
	out := p.Prices()
	sort.Float64s(out)
	return out
}

// MarshalJSON encodes the levels as a list of price/kind pairs in ascending
// price order.
func (p *PriceLevels) MarshalJSON() ([]byte, error) {
	type entry struct {
		Price float64   `json:"price"`
		Kind  LevelKind `json:"kind"`
	}
	sorted := p.Sorted()
	out := make([]entry, 0, len(sorted))
	for _, price := range sorted {
		out = append(out, entry{Price: price, Kind: p.kinds[price]})
	}
	return json.Marshal(out)
}

// FormatPrice renders a price key the way reports print it.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

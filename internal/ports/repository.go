package ports

import (
	"context"
	"time"

	"tradingengine/internal/domain"
)

// KlineQuery selects a stored kline series. Zero Start or End leaves that
// side of the range open.
type KlineQuery struct {
	Symbol   string
	Interval string
	Start    time.Time
	End      time.Time
	Limit    int // Keep only the most recent Limit klines when positive
}

// KlineRepository stores and loads input kline series.
type KlineRepository interface {
	// SaveKlines inserts or replaces klines keyed by symbol, interval and open time.
	SaveKlines(ctx context.Context, klines []*domain.Kline) (int, error)
	// LoadKlines returns the matching klines ordered by open time ascending.
	LoadKlines(ctx context.Context, q KlineQuery) ([]*domain.Kline, error)
	// Symbols lists the distinct symbol/interval pairs held in the store.
	Symbols(ctx context.Context) ([]SeriesKey, error)
}

// SeriesKey identifies one stored series.
type SeriesKey struct {
	Symbol   string
	Interval string
}

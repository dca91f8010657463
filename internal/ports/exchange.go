package ports

import (
	"context"
	"time"

	"tradingengine/internal/domain"
)

// MarketDataClient reads historical klines from an exchange. It exposes no
// account or order endpoints.
type MarketDataClient interface {
	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error

	// GetKlines retrieves the most recent klines for the given symbol.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)

	// GetKlinesRange retrieves every kline between start and end, paging as needed.
	GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error)
}

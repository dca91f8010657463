package risk

import (
	"context"
	"fmt"
	"math"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
	"tradingengine/internal/strategy/indicators"
)

// DefaultATRPeriod is the ATR window used when none is configured.
const DefaultATRPeriod = 14

// Config holds configuration for risk management
type Config struct {
	ATRPeriod int
}

// Manager derives stop-loss, take-profit and risk/reward figures from a
// price level map.
type Manager struct {
	config Config
}

// NewManager creates a new risk manager instance
func NewManager(config Config) (*Manager, error) {
	if config.ATRPeriod == 0 {
		config.ATRPeriod = DefaultATRPeriod
	}
	if config.ATRPeriod < 0 {
		return nil, fmt.Errorf("%w: atr period must be positive (got %d)", ports.ErrInvalidConfiguration, config.ATRPeriod)
	}
	return &Manager{config: config}, nil
}

// Calculate computes the ATR once and derives every risk parameter from it.
func (r *Manager) Calculate(ctx context.Context, klines []*domain.Kline, levels *domain.PriceLevels) (*domain.RiskParameters, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
	}
	if levels.Len() == 0 {
		return nil, fmt.Errorf("%w: no price levels", ports.ErrInsufficientLevels)
	}
	atr, err := indicators.AverageATR(klines, r.config.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("calculating ATR: %w", err)
	}
	if math.IsNaN(atr) {
		return nil, fmt.Errorf("%w: ATR is undefined for %d bars", ports.ErrInsufficientData, len(klines))
	}

	rr, err := RiskReward(levels, atr)
	if err != nil {
		return nil, err
	}
	return &domain.RiskParameters{
		ATR:        atr,
		StopLoss:   StopLoss(levels, atr),
		TakeProfit: TakeProfit(levels, atr),
		RiskReward: rr,
	}, nil
}

// StopLoss places a stop one ATR below every level. A level whose lower
// neighbour is support gets the tighter of its own stop and the neighbour's.
func StopLoss(levels *domain.PriceLevels, atr float64) domain.PriceMap {
	prices := levels.Sorted()
	out := make(domain.PriceMap, len(prices))
	for i, price := range prices {
		stop := price - atr
		if i > 0 && kindAt(levels, prices[i-1]) == domain.LevelSupport {
			stop = math.Min(stop, prices[i-1]-atr)
		}
		out[price] = stop
	}
	return out
}

// TakeProfit places a target one ATR above every level. A level whose upper
// neighbour is resistance gets the looser of its own target and the neighbour's.
func TakeProfit(levels *domain.PriceLevels, atr float64) domain.PriceMap {
	prices := levels.Sorted()
	out := make(domain.PriceMap, len(prices))
	for i, price := range prices {
		target := price + atr
		if i < len(prices)-1 && kindAt(levels, prices[i+1]) == domain.LevelResistance {
			target = math.Max(target, prices[i+1]+atr)
		}
		out[price] = target
	}
	return out
}

// RiskReward measures risk at the lowest support and reward at the lowest
// resistance. The ratio is never reported below 1.
func RiskReward(levels *domain.PriceLevels, atr float64) (domain.RiskReward, error) {
	prices := levels.Sorted()

	supportIdx := firstOfKind(levels, prices, domain.LevelSupport)
	if supportIdx < 0 {
		return domain.RiskReward{}, fmt.Errorf("%w: no support level", ports.ErrInsufficientLevels)
	}
	if supportIdx == 0 {
		return domain.RiskReward{}, fmt.Errorf("%w: support %s has no lower level",
			ports.ErrInsufficientLevels, domain.FormatPrice(prices[0]))
	}
	risk := prices[supportIdx] - (prices[supportIdx-1] - atr)

	resistanceIdx := firstOfKind(levels, prices, domain.LevelResistance)
	if resistanceIdx < 0 {
		return domain.RiskReward{}, fmt.Errorf("%w: no resistance level", ports.ErrInsufficientLevels)
	}
	if resistanceIdx == len(prices)-1 {
		return domain.RiskReward{}, fmt.Errorf("%w: resistance %s has no higher level",
			ports.ErrInsufficientLevels, domain.FormatPrice(prices[resistanceIdx]))
	}
	reward := prices[resistanceIdx+1] - prices[resistanceIdx]

	if risk == 0 {
		return domain.RiskReward{}, fmt.Errorf("%w: risk is zero", ports.ErrDivisionByZero)
	}
	ratio := reward / risk
	if ratio < 1.0 {
		ratio = 1.0
	}
	return domain.RiskReward{Risk: risk, Reward: reward, Ratio: ratio}, nil
}

func kindAt(levels *domain.PriceLevels, price float64) domain.LevelKind {
	kind, _ := levels.Kind(price)
	return kind
}

func firstOfKind(levels *domain.PriceLevels, sorted []float64, kind domain.LevelKind) int {
	for i, price := range sorted {
		if kindAt(levels, price) == kind {
			return i
		}
	}
	return -1
}

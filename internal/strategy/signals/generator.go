package signals

import (
	"fmt"
	"math"

	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
)

const (
	// MinPriceMove is the smallest entry-to-exit distance accepted as a trade.
	MinPriceMove = 0.01
	// RiskFraction is the share of the price move put at risk when sizing.
	RiskFraction = 0.01
	// MinPositionSize floors every computed position size.
	MinPositionSize = 0.001
)

// Generate turns the bias and level map into entry and exit signals and pairs
// every entry with every exit.
func Generate(klines []*domain.Kline, bias domain.BiasResult, levels *domain.PriceLevels) (*domain.Signals, error) {
	if len(klines) == 0 {
		return nil, fmt.Errorf("%w: no bars to generate signals from", ports.ErrInsufficientData)
	}

	entries, err := Entries(klines, bias)
	if err != nil {
		return nil, err
	}
	exits, err := Exits(klines, levels)
	if err != nil {
		return nil, err
	}

	return &domain.Signals{
		Entries: entries,
		Exits:   exits,
		Trades:  Pair(entries, exits),
	}, nil
}

// Entries emits a single entry at the last bar when the overall bias is strong.
func Entries(klines []*domain.Kline, bias domain.BiasResult) ([]domain.Entry, error) {
	if len(klines) == 0 {
		return nil, fmt.Errorf("%w: no bars to place an entry on", ports.ErrInsufficientData)
	}
	last := klines[len(klines)-1]

	entries := []domain.Entry{}
	switch bias.Overall {
	case domain.StrongBullish:
		entries = append(entries, domain.Entry{Type: domain.BullishEntry, Price: last.Close, Time: last.OpenTime})
	case domain.StrongBearish:
		entries = append(entries, domain.Entry{Type: domain.BearishEntry, Price: last.Close, Time: last.OpenTime})
	}
	return entries, nil
}

// Exits emits one exit per support or resistance level, in ascending price
// order. A resistance exit is timed at the last bar closing at or above the
// level and a support exit at the last bar closing at or below it.
func Exits(klines []*domain.Kline, levels *domain.PriceLevels) ([]domain.Exit, error) {
	exits := []domain.Exit{}
	if levels == nil {
		return exits, nil
	}

	for _, price := range levels.Sorted() {
		kind, _ := levels.Kind(price)

		var exitType domain.ExitType
		var hit func(close float64) bool
		switch kind {
		case domain.LevelResistance:
			exitType = domain.ResistanceExit
			hit = func(close float64) bool { return close >= price }
		case domain.LevelSupport:
			exitType = domain.SupportExit
			hit = func(close float64) bool { return close <= price }
		default:
			continue
		}

		bar := lastMatching(klines, hit)
		if bar == nil {
			return nil, fmt.Errorf("%w: no close crosses %s level %s",
				ports.ErrNoQualifyingBar, kind, domain.FormatPrice(price))
		}
		exits = append(exits, domain.Exit{Type: exitType, Price: price, Time: bar.OpenTime})
	}
	return exits, nil
}

// Pair forms the cross product of entries and exits. Entries are at most one
// per run, which keeps the product linear in the number of exits.
func Pair(entries []domain.Entry, exits []domain.Exit) []domain.Trade {
	trades := make([]domain.Trade, 0, len(entries)*len(exits))
	for _, entry := range entries {
		for _, exit := range exits {
			trades = append(trades, domain.Trade{
				Entry:  entry,
				Exit:   exit,
				Profit: exit.Price - entry.Price,
			})
		}
	}
	return trades
}

// ExecuteTrade validates a trade request and sizes it against its risk.
// Nothing leaves the process.
func ExecuteTrade(req domain.TradeRequest) (*domain.ExecutionResult, error) {
	var missing []string
	if req.Entry == nil {
		missing = append(missing, "entry")
	}
	if req.Exit == nil {
		missing = append(missing, "exit")
	}
	if req.RiskReward == nil {
		missing = append(missing, "risk_reward")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", ports.ErrInvalidTrade, missing)
	}

	move := math.Abs(req.Exit.Price - req.Entry.Price)
	if move < MinPriceMove {
		return nil, fmt.Errorf("%w: price move %.4f is below %.2f", ports.ErrInvalidTrade, move, MinPriceMove)
	}
	if req.RiskReward.Risk == 0 {
		return nil, fmt.Errorf("%w: risk is zero", ports.ErrDivisionByZero)
	}

	size := move * RiskFraction / req.RiskReward.Risk
	if size < MinPositionSize {
		size = MinPositionSize
	}

	return &domain.ExecutionResult{
		Status:       domain.StatusExecuted,
		Entry:        *req.Entry,
		Exit:         *req.Exit,
		Profit:       req.Exit.Price - req.Entry.Price,
		PositionSize: size,
		RiskReward:   *req.RiskReward,
	}, nil
}

func lastMatching(klines []*domain.Kline, hit func(float64) bool) *domain.Kline {
	for i := len(klines) - 1; i >= 0; i-- {
		if klines[i] != nil && hit(klines[i].Close) {
			return klines[i]
		}
	}
	return nil
}

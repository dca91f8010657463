package analytics

import (
	"math"
	"sort"

	"tradingengine/internal/domain"
)

// TradeStats summarizes the paired trades of a signal set. Profits are in
// price units per unit of position.
type TradeStats struct {
	// Basic Metrics
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalProfit   float64 `json:"total_profit"`
	AverageWin    float64 `json:"average_win"`
	AverageLoss   float64 `json:"average_loss"`
	BestTrade     float64 `json:"best_trade"`
	WorstTrade    float64 `json:"worst_trade"`

	// Advanced Metrics
	ProfitFactor         float64 `json:"profit_factor"` // Gross profit over gross loss, 0 without losses
	PayoffRatio          float64 `json:"payoff_ratio"`  // Average win over average loss
	Expectancy           float64 `json:"expectancy"`
	MaxDrawdown          float64 `json:"max_drawdown"` // Largest drop of cumulative profit from its peak
	MaxConsecutiveWins   int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
}

// Summarize computes trade statistics in exit time order. A zero profit
// counts as a loss. The input is not modified.
func Summarize(trades []domain.Trade) TradeStats {
	var stats TradeStats
	if len(trades) == 0 {
		return stats
	}

	ordered := make([]domain.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Exit.Time.Before(ordered[j].Exit.Time)
	})

	var grossProfit, grossLoss float64
	var cumulative, peak float64
	var consecutiveWins, consecutiveLosses int
	stats.BestTrade = math.Inf(-1)
	stats.WorstTrade = math.Inf(1)

	for _, trade := range ordered {
		stats.TotalTrades++
		if trade.Profit > 0 {
			stats.WinningTrades++
			grossProfit += trade.Profit
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			stats.LosingTrades++
			grossLoss += trade.Profit
			consecutiveLosses++
			consecutiveWins = 0
		}
		stats.MaxConsecutiveWins = max(stats.MaxConsecutiveWins, consecutiveWins)
		stats.MaxConsecutiveLosses = max(stats.MaxConsecutiveLosses, consecutiveLosses)
		stats.BestTrade = math.Max(stats.BestTrade, trade.Profit)
		stats.WorstTrade = math.Min(stats.WorstTrade, trade.Profit)

		// Update drawdown tracking
		cumulative += trade.Profit
		if cumulative > peak {
			peak = cumulative
		}
		stats.MaxDrawdown = math.Max(stats.MaxDrawdown, peak-cumulative)
	}

	// Calculate final metrics
	stats.TotalProfit = grossProfit + grossLoss
	stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades)
	if stats.WinningTrades > 0 {
		stats.AverageWin = grossProfit / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AverageLoss = grossLoss / float64(stats.LosingTrades)
	}
	if grossLoss != 0 {
		stats.ProfitFactor = grossProfit / -grossLoss
	}
	if stats.AverageLoss != 0 {
		stats.PayoffRatio = stats.AverageWin / -stats.AverageLoss
	}
	stats.Expectancy = stats.WinRate*stats.AverageWin + (1-stats.WinRate)*stats.AverageLoss

	return stats
}

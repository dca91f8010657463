package analytics

import (
	"math"
	"testing"
	"time"

	"tradingengine/internal/domain"
)

func trade(profit float64, exitHour int) domain.Trade {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return domain.Trade{
		Entry:  domain.Entry{Type: domain.BullishEntry, Price: 100, Time: base},
		Exit:   domain.Exit{Type: domain.ResistanceExit, Price: 100 + profit, Time: base.Add(time.Duration(exitHour) * time.Hour)},
		Profit: profit,
	}
}

func TestSummarize(t *testing.T) {
	// Exit order: 5, -2, 3, 4, -1
	trades := []domain.Trade{
		trade(4, 4),
		trade(5, 1),
		trade(-1, 5),
		trade(-2, 2),
		trade(3, 3),
	}

	stats := Summarize(trades)

	// Verify basic metrics
	if stats.TotalTrades != 5 {
		t.Errorf("Expected 5 total trades, got %d", stats.TotalTrades)
	}
	if stats.WinningTrades != 3 {
		t.Errorf("Expected 3 winning trades, got %d", stats.WinningTrades)
	}
	if stats.LosingTrades != 2 {
		t.Errorf("Expected 2 losing trades, got %d", stats.LosingTrades)
	}
	if stats.WinRate != 0.6 {
		t.Errorf("Expected 0.6 win rate, got %f", stats.WinRate)
	}
	if stats.TotalProfit != 9 {
		t.Errorf("Expected 9 total profit, got %f", stats.TotalProfit)
	}
	if stats.AverageWin != 4 {
		t.Errorf("Expected average win of 4, got %f", stats.AverageWin)
	}
	if stats.AverageLoss != -1.5 {
		t.Errorf("Expected average loss of -1.5, got %f", stats.AverageLoss)
	}
	if stats.BestTrade != 5 || stats.WorstTrade != -2 {
		t.Errorf("Expected best 5 and worst -2, got %f and %f", stats.BestTrade, stats.WorstTrade)
	}

	// Verify advanced metrics
	if stats.ProfitFactor != 4 {
		t.Errorf("Expected profit factor of 4, got %f", stats.ProfitFactor)
	}
	if math.Abs(stats.PayoffRatio-8.0/3.0) > 1e-9 {
		t.Errorf("Expected payoff ratio of 2.667, got %f", stats.PayoffRatio)
	}
	if math.Abs(stats.Expectancy-1.8) > 1e-9 {
		t.Errorf("Expected expectancy of 1.8, got %f", stats.Expectancy)
	}
	if stats.MaxDrawdown != 2 {
		t.Errorf("Expected max drawdown of 2, got %f", stats.MaxDrawdown)
	}
	if stats.MaxConsecutiveWins != 2 {
		t.Errorf("Expected 2 max consecutive wins, got %d", stats.MaxConsecutiveWins)
	}
	if stats.MaxConsecutiveLosses != 1 {
		t.Errorf("Expected 1 max consecutive loss, got %d", stats.MaxConsecutiveLosses)
	}

	// Input order is preserved
	if trades[0].Profit != 4 {
		t.Errorf("Expected input to be left unsorted, first profit is %f", trades[0].Profit)
	}
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(nil)
	if stats != (TradeStats{}) {
		t.Errorf("Expected zero stats for no trades, got %+v", stats)
	}
}

func TestSummarize_OnlyWins(t *testing.T) {
	stats := Summarize([]domain.Trade{trade(2, 1), trade(6, 2)})

	if stats.WinRate != 1 {
		t.Errorf("Expected 1.0 win rate, got %f", stats.WinRate)
	}
	if stats.ProfitFactor != 0 || stats.PayoffRatio != 0 {
		t.Errorf("Expected zero ratios without losses, got %f and %f", stats.ProfitFactor, stats.PayoffRatio)
	}
	if stats.Expectancy != 4 {
		t.Errorf("Expected expectancy of 4, got %f", stats.Expectancy)
	}
	if stats.MaxDrawdown != 0 {
		t.Errorf("Expected no drawdown, got %f", stats.MaxDrawdown)
	}
}

func TestSummarize_ZeroProfitIsLoss(t *testing.T) {
	stats := Summarize([]domain.Trade{trade(0, 1)})

	if stats.LosingTrades != 1 || stats.WinningTrades != 0 {
		t.Errorf("Expected a zero-profit trade to count as a loss, got %d wins %d losses", stats.WinningTrades, stats.LosingTrades)
	}
	if stats.ProfitFactor != 0 {
		t.Errorf("Expected zero profit factor, got %f", stats.ProfitFactor)
	}
}

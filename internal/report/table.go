package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"tradingengine/internal/domain"
	"tradingengine/internal/strategy/analytics"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

const timeLayout = "2006-01-02 15:04"

// WriteJSON writes v, typically a report, as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTable renders the report as a sequence of console tables.
func WriteTable(w io.Writer, r *domain.Report) error {
	if r == nil {
		return fmt.Errorf("nil report")
	}

	fmt.Fprintf(w, "Report %s (%s)\n\n", r.ID, r.Mode)
	if err := writeSummary(w, r); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nPrice levels (%d):\n", r.PriceLevels.Len())
	if err := writeLevels(w, r); err != nil {
		return err
	}

	if r.VolumeProfile != nil {
		fmt.Fprintf(w, "\nVolume profile %s .. %s:\n",
			r.VolumeProfile.SessionStart.Format(timeLayout), r.VolumeProfile.SessionEnd.Format(timeLayout))
		if err := writeProfile(w, r.VolumeProfile); err != nil {
			return err
		}
	}

	if r.Signals != nil {
		fmt.Fprintf(w, "\nSignals (%d entries, %d exits, %d trades):\n",
			len(r.Signals.Entries), len(r.Signals.Exits), len(r.Signals.Trades))
		if err := writeSignals(w, r.Signals); err != nil {
			return err
		}
		if len(r.Signals.Trades) > 0 {
			fmt.Fprintf(w, "\nTrade summary:\n")
			if err := writeTradeStats(w, analytics.Summarize(r.Signals.Trades)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSummary(w io.Writer, r *domain.Report) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Field", "Value"}),
	)

	rows := [][]string{
		{"symbol", orDash(r.Symbol)},
		{"interval", orDash(r.Interval)},
		{"bars", humanize.Comma(int64(r.Bars))},
		{"trend", string(r.Bias.Trend)},
		{"momentum", string(r.Bias.Momentum)},
		{"volume", string(r.Bias.Volume)},
		{"overall bias", string(r.Bias.Overall)},
	}
	if r.Risk != nil {
		rows = append(rows,
			[]string{"atr", price(r.Risk.ATR)},
			[]string{"risk", price(r.Risk.RiskReward.Risk)},
			[]string{"reward", price(r.Risk.RiskReward.Reward)},
			[]string{"risk/reward", fmt.Sprintf("%.2f", r.Risk.RiskReward.Ratio)},
		)
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeLevels(w io.Writer, r *domain.Report) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Price", "Kind", "Stop Loss", "Take Profit"}),
	)

	for _, p := range r.PriceLevels.Sorted() {
		kind, _ := r.PriceLevels.Kind(p)
		stop, target := "-", "-"
		if r.Risk != nil {
			stop = lookup(r.Risk.StopLoss, p)
			target = lookup(r.Risk.TakeProfit, p)
		}
		if err := table.Append([]string{price(p), string(kind), stop, target}); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeProfile(w io.Writer, vp *domain.VolumeProfile) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Rank", "Interval", "Volume", "Share"}),
	)

	for _, e := range vp.Ranked {
		if err := table.Append([]string{
			fmt.Sprintf("%d", e.Rank),
			e.Interval,
			humanize.Commaf(math.Round(e.Volume*100) / 100),
			fmt.Sprintf("%.2f%%", e.Percentage),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "total volume %s, value area %s (%.2f%%)\n",
		humanize.Commaf(math.Round(vp.TotalVolume*100)/100), price(vp.ValueArea), vp.ValueAreaPercent)
	return err
}

func writeSignals(w io.Writer, s *domain.Signals) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Signal", "Price", "Time"}),
	)

	for _, e := range s.Entries {
		if err := table.Append([]string{string(e.Type), price(e.Price), e.Time.UTC().Format(timeLayout)}); err != nil {
			return err
		}
	}
	for _, e := range s.Exits {
		if err := table.Append([]string{string(e.Type), price(e.Price), e.Time.UTC().Format(timeLayout)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeTradeStats(w io.Writer, stats analytics.TradeStats) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Field", "Value"}),
	)

	rows := [][]string{
		{"trades", fmt.Sprintf("%d (%d won, %d lost)", stats.TotalTrades, stats.WinningTrades, stats.LosingTrades)},
		{"win rate", fmt.Sprintf("%.1f%%", stats.WinRate*100)},
		{"total profit", price(stats.TotalProfit)},
		{"best / worst", price(stats.BestTrade) + " / " + price(stats.WorstTrade)},
		{"profit factor", fmt.Sprintf("%.2f", stats.ProfitFactor)},
		{"expectancy", price(stats.Expectancy)},
		{"max drawdown", price(stats.MaxDrawdown)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteBatchSummary renders one row per analyzed source.
func WriteBatchSummary(w io.Writer, results map[string]*domain.Report, failures map[string]error) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Source", "Bars", "Bias", "Levels", "Exits", "Status"}),
	)

	names := make([]string, 0, len(results)+len(failures))
	for name := range results {
		names = append(names, name)
	}
	for name := range failures {
		if _, ok := results[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		row := []string{name, "-", "-", "-", "-", "ok"}
		if r, ok := results[name]; ok && r != nil {
			row[1] = humanize.Comma(int64(r.Bars))
			row[2] = string(r.Bias.Overall)
			row[3] = fmt.Sprintf("%d", r.PriceLevels.Len())
			row[4] = fmt.Sprintf("%d", len(r.Signals.Exits))
		}
		if err, ok := failures[name]; ok {
			row[5] = err.Error()
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteExecutions renders sized trades.
func WriteExecutions(w io.Writer, results []*domain.ExecutionResult) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Entry", "Exit", "Profit", "Size", "R:R", "Status"}),
	)
	for _, r := range results {
		row := []string{
			price(r.Entry.Price),
			fmt.Sprintf("%s (%s)", price(r.Exit.Price), r.Exit.Type),
			price(r.Profit),
			price(r.PositionSize),
			fmt.Sprintf("%.2f", r.RiskReward.Ratio),
			string(r.Status),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func price(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return humanize.FormatFloat("#,###.####", v)
}

func lookup(m domain.PriceMap, p float64) string {
	v, ok := m[p]
	if !ok {
		return "-"
	}
	return price(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"tradingengine/config"
	"tradingengine/internal/adapters/sqlite"
	"tradingengine/internal/app"
	"tradingengine/internal/domain"
	"tradingengine/internal/metrics"
	"tradingengine/internal/ports"
	"tradingengine/internal/report"
	"tradingengine/internal/utils"

	"github.com/spf13/cobra"
)

// Deps are the components built by main before the commands run.
type Deps struct {
	Config  *config.Config
	Logger  ports.Logger
	Metrics *metrics.Recorder // Optional
}

// application carries the dependencies and the persistent flag values.
type application struct {
	deps     Deps
	analysis config.AnalysisConfig
	service  *app.AnalysisService

	csvPath    string
	dbPath     string
	symbol     string
	interval   string
	format     string
	profile    string
	sizeTrades bool
}

var timeFlagLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// NewRootCommand builds the tradingengine command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	a := &application{deps: deps}

	rootCmd := &cobra.Command{
		Use:   "tradingengine",
		Short: "Technical analysis engine for OHLCV kline series",
		Long: `tradingengine derives indicators, market bias, price levels, a volume
profile, risk parameters and trading signals from a kline series.

Klines are read from a CSV file (--csv) or from the SQLite store filled by
fetch_klines (--db, --symbol, --interval).

Examples:
  tradingengine session --csv data/BTCUSDT_1h.csv --rows 12
  tradingengine strategy --symbol ETHUSDT --interval 15m --sma 50
  tradingengine batch data/*.csv --workers 4
  tradingengine watch --cron "@every 1m"`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// Flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.csvPath, "csv", "", "read klines from this CSV file instead of the database")
	flags.StringVar(&a.dbPath, "db", deps.Config.Storage.DBPath, "SQLite kline store")
	flags.StringVar(&a.symbol, "symbol", deps.Config.App.Symbol, "symbol to load from the store")
	flags.StringVar(&a.interval, "interval", deps.Config.App.Interval, "kline interval to load from the store")
	flags.StringVar(&a.format, "format", "table", "output format: table, json")
	flags.StringVar(&a.profile, "profile", deps.Config.App.AnalysisProfile, "YAML analysis profile overriding the configured periods")
	flags.BoolVar(&a.sizeTrades, "size-trades", false, "validate and size every paired trade")

	rootCmd.AddCommand(
		a.newSessionCommand(),
		a.newStrategyCommand(),
		a.newBatchCommand(),
		a.newWatchCommand(),
	)
	return rootCmd
}

func (a *application) setup(cmd *cobra.Command, args []string) error {
	if a.format != "table" && a.format != "json" {
		return fmt.Errorf("%w: unsupported format %q (use table or json)", ports.ErrInvalidConfiguration, a.format)
	}

	a.analysis = a.deps.Config.Analysis
	if cmd.Flags().Changed("profile") && a.profile != "" {
		if err := config.LoadProfile(a.profile, &a.analysis); err != nil {
			return err
		}
	}

	svc, err := app.NewAnalysisService(app.Config{
		Indicators: a.analysis.Indicators(),
		Rows:       a.analysis.Rows,
		ValueArea:  a.analysis.ValueArea,
	}, a.deps.Logger, a.deps.Metrics)
	if err != nil {
		return fmt.Errorf("creating analysis service: %w", err)
	}
	a.service = svc
	return nil
}

// openStore opens the SQLite kline store named by --db.
func (a *application) openStore() (*sqlite.Repository, error) {
	return sqlite.NewRepository(sqlite.Config{
		DBPath: a.dbPath,
		Logger: a.deps.Logger,
	})
}

// loadKlines reads the series selected by the persistent flags.
func (a *application) loadKlines(ctx context.Context) ([]*domain.Kline, error) {
	if a.csvPath != "" {
		klines, err := utils.ReadKlinesFromCSV(a.csvPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", a.csvPath, err)
		}
		return klines, nil
	}

	repo, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			a.deps.Logger.Error(ctx, err, "Error closing database repository")
		}
	}()

	klines, err := repo.LoadKlines(ctx, ports.KlineQuery{Symbol: a.symbol, Interval: a.interval})
	if err != nil {
		return nil, err
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("%w: no klines stored for %s %s (stored series: %s)",
			ports.ErrInsufficientData, a.symbol, a.interval, a.storedSeries(ctx, repo))
	}
	return klines, nil
}

// storedSeries lists what the store does hold, for the empty-series error.
func (a *application) storedSeries(ctx context.Context, repo ports.KlineRepository) string {
	keys, err := repo.Symbols(ctx)
	if err != nil {
		a.deps.Logger.Warn(ctx, "Failed to list stored series", map[string]interface{}{"error": err.Error()})
		return "unknown"
	}
	if len(keys) == 0 {
		return "none"
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = key.Symbol + " " + key.Interval
	}
	return strings.Join(names, ", ")
}

// render writes the report, and the sized trades when requested, in the
// selected format.
func (a *application) render(ctx context.Context, w io.Writer, r *domain.Report) error {
	var executions []*domain.ExecutionResult
	if a.sizeTrades {
		executions = a.sizeAll(ctx, r)
	}

	if a.format == "json" {
		if !a.sizeTrades {
			return report.WriteJSON(w, r)
		}
		return report.WriteJSON(w, struct {
			Report     *domain.Report            `json:"report"`
			Executions []*domain.ExecutionResult `json:"executions"`
		}{r, executions})
	}

	if err := report.WriteTable(w, r); err != nil {
		return err
	}
	if a.sizeTrades {
		fmt.Fprintf(w, "\nSized trades (%d of %d):\n", len(executions), len(r.Signals.Trades))
		return report.WriteExecutions(w, executions)
	}
	return nil
}

// sizeAll sizes every trade of the report. Rejected trades are logged by the
// service and left out.
func (a *application) sizeAll(ctx context.Context, r *domain.Report) []*domain.ExecutionResult {
	executions := []*domain.ExecutionResult{}
	for i := range r.Signals.Trades {
		t := r.Signals.Trades[i]
		result, err := a.service.ExecuteTrade(ctx, domain.TradeRequest{
			Entry:      &t.Entry,
			Exit:       &t.Exit,
			RiskReward: &r.Risk.RiskReward,
		})
		if err != nil {
			continue
		}
		executions = append(executions, result)
	}
	return executions
}

func parseTimeFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeFlagLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: --%s %q is not a time (use RFC3339 or 2006-01-02)", ports.ErrInvalidRequest, name, value)
}

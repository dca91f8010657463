package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"tradingengine/config"
	"tradingengine/internal/adapters/binanceclient"
	"tradingengine/internal/adapters/logger"
	"tradingengine/internal/adapters/sqlite"
	"tradingengine/internal/ports"
	"tradingengine/internal/utils"

	"github.com/spf13/cobra"
)

var (
	symbol   string
	interval string
	days     int
	csvDir   string
	noStore  bool
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	rootCmd := &cobra.Command{
		Use:   "fetch_klines",
		Short: "Download Binance futures klines into the SQLite store and a CSV file",
		Long: `fetch_klines pages through the public Binance futures klines endpoint and
stores the series for tradingengine.

Examples:
  fetch_klines --symbol ETHUSDT --interval 1m --days 90
  fetch_klines --symbol BTCUSDT --interval 1h --no-store --csv-dir exports`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, appLogger)
		},
	}

	// Flags
	rootCmd.Flags().StringVar(&symbol, "symbol", cfg.App.Symbol, "futures symbol")
	rootCmd.Flags().StringVar(&interval, "interval", cfg.App.Interval, "kline interval")
	rootCmd.Flags().IntVar(&days, "days", 90, "days of history ending now")
	rootCmd.Flags().StringVar(&csvDir, "csv-dir", "data", "directory of the CSV export, empty to skip it")
	rootCmd.Flags().BoolVar(&noStore, "no-store", false, "skip the SQLite store")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger ports.Logger) error {
	if days <= 0 {
		return fmt.Errorf("%w: --days must be positive", ports.ErrInvalidRequest)
	}

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:            cfg.Binance.APIKey,
		SecretKey:         cfg.Binance.SecretKey,
		UseTestnet:        cfg.Binance.IsTestnet,
		RequestsPerSecond: cfg.Binance.RequestsPerSecond,
		Logger:            appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "Failed to initialize Binance client")
		return err
	}
	if err := binanceClient.Ping(ctx); err != nil {
		return err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	fmt.Printf("Fetching klines for %s %s from %s to %s...\n", symbol, interval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	klines, err := binanceClient.GetKlinesRange(ctx, symbol, interval, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching klines")
		return err
	}
	appLogger.Info(ctx, "Fetched klines", map[string]interface{}{"count": len(klines)})

	// 4. Store in the SQLite repository
	if !noStore {
		repo, err := sqlite.NewRepository(sqlite.Config{
			DBPath: cfg.Storage.DBPath,
			Logger: appLogger,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := repo.Close(); err != nil {
				appLogger.Error(ctx, err, "Error closing database repository")
			}
		}()

		saved, err := repo.SaveKlines(ctx, klines)
		if err != nil {
			appLogger.Error(ctx, err, "Error saving klines")
			return err
		}
		appLogger.Info(ctx, "Saved to store", map[string]interface{}{"dbPath": cfg.Storage.DBPath, "count": saved})
	}

	// 5. Export CSV
	if csvDir != "" {
		filename := filepath.Join(csvDir, fmt.Sprintf("%s_%s_%s_to_%s.csv", symbol, interval, start.Format("20060102"), end.Format("20060102")))
		if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
			appLogger.Error(ctx, err, "Error writing CSV")
			return err
		}
		appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
	}
	return nil
}

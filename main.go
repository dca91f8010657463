package main

import (
	"context"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"

	"tradingengine/config"
	"tradingengine/internal/adapters/logger"
	"tradingengine/internal/cli"
	"tradingengine/internal/metrics"
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
	appLogger.Debug(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.App.LogLevel})

	// 3. Initialize Metrics
	recorder := metrics.NewRecorder(nil)

	// 4. Run the requested command
	rootCmd := cli.NewRootCommand(cli.Deps{
		Config:  cfg,
		Logger:  appLogger,
		Metrics: recorder,
	})
	err = rootCmd.ExecuteContext(context.Background())
	_ = appLogger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

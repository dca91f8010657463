package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradingengine/internal/app"
	"tradingengine/internal/ports"
	"tradingengine/internal/report"
	"tradingengine/internal/scheduler"

	"github.com/spf13/cobra"
)

const watchJobName = "strategy-analysis"

func (a *application) newWatchCommand() *cobra.Command {
	watchCfg := a.deps.Config.Watch
	var (
		cronSpec    string
		lookback    int
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run strategy analysis over the latest stored klines on a schedule",
		Long: `Runs strategy analysis over the most recent --lookback klines of the store
on every --cron tick, and serves Prometheus metrics on --metrics-addr.
Fill the store with fetch_klines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lookback <= 0 {
				return fmt.Errorf("%w: --lookback must be positive", ports.ErrInvalidConfiguration)
			}

			// Setup context with cancellation
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Handle interrupt
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)
			go func() {
				select {
				case <-sigChan:
					a.deps.Logger.Info(ctx, "Shutdown signal received")
					cancel()
				case <-ctx.Done():
				}
			}()

			repo, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					a.deps.Logger.Error(ctx, err, "Error closing database repository")
				}
			}()

			sched, err := scheduler.New(ctx, a.deps.Logger)
			if err != nil {
				return err
			}
			query := ports.KlineQuery{Symbol: a.symbol, Interval: a.interval, Limit: lookback}
			job := a.watchJob(repo, query, cmd.OutOrStdout())
			if err := sched.Register(watchJobName, cronSpec, job); err != nil {
				return err
			}

			server := a.startMetricsServer(ctx, metricsAddr)

			// First run right away; later failures only show up in logs and metrics.
			if err := sched.RunNow(watchJobName); err != nil && !errors.Is(err, context.Canceled) {
				a.deps.Logger.Warn(ctx, "Initial analysis failed", map[string]interface{}{"kind": ports.ErrorKind(err)})
			}

			sched.Start()
			<-ctx.Done()
			sched.Stop()

			if server != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					a.deps.Logger.Error(ctx, err, "Error shutting down metrics server")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", watchCfg.Cron, "analysis schedule (cron syntax or @every)")
	cmd.Flags().IntVar(&lookback, "lookback", watchCfg.Lookback, "most recent klines analyzed per run")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", watchCfg.MetricsAddr, "address of the /metrics endpoint, empty to disable")
	return cmd
}

// watchJob loads the latest klines and writes one strategy report per run.
func (a *application) watchJob(repo ports.KlineRepository, query ports.KlineQuery, w io.Writer) scheduler.Job {
	return func(ctx context.Context) error {
		klines, err := repo.LoadKlines(ctx, query)
		if err != nil {
			return err
		}
		r, err := a.service.AnalyzeStrategy(ctx, klines, app.StrategyRequest{})
		if err != nil {
			return err
		}
		if a.format == "json" {
			return report.WriteJSON(w, r)
		}
		return report.WriteTable(w, r)
	}
}

func (a *application) startMetricsServer(ctx context.Context, addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.deps.Metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.deps.Logger.Info(ctx, "Metrics server listening", map[string]interface{}{"addr": addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.deps.Logger.Error(ctx, err, "Metrics server failed")
		}
	}()
	return server
}

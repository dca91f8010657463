package cli

import (
	"fmt"
	"path/filepath"
	"sync"

	"tradingengine/internal/app"
	"tradingengine/internal/domain"
	"tradingengine/internal/ports"
	"tradingengine/internal/report"
	"tradingengine/internal/utils"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func (a *application) newBatchCommand() *cobra.Command {
	var (
		workers int
		mode    string
	)

	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Analyze several CSV files, one independent run per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if mode != string(domain.ModeSession) && mode != string(domain.ModeStrategy) {
				return fmt.Errorf("%w: unsupported mode %q (use session or strategy)", ports.ErrInvalidConfiguration, mode)
			}
			if workers <= 0 {
				workers = 1
			}

			// Setup progress bar
			bar := progressbar.NewOptions(len(args),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Analyzing"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]█[reset]",
					SaucerHead:    "[green]█[reset]",
					SaucerPadding: "░",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)

			var (
				mu       sync.Mutex
				wg       sync.WaitGroup
				results  = make(map[string]*domain.Report)
				failures = make(map[string]error)
				sem      = make(chan struct{}, workers)
			)

			for _, path := range args {
				wg.Add(1)
				go func(path string) {
					defer wg.Done()
					sem <- struct{}{}
					defer func() { <-sem }()

					name := filepath.Base(path)
					r, err := a.analyzeFile(cmd, path, mode)

					mu.Lock()
					if err != nil {
						failures[name] = err
					} else {
						results[name] = r
					}
					bar.Add(1)
					mu.Unlock()
				}(path)
			}
			wg.Wait()

			bar.Finish()
			fmt.Fprintln(cmd.ErrOrStderr())

			a.deps.Logger.Info(ctx, "Batch completed", map[string]interface{}{
				"files":    len(args),
				"analyzed": len(results),
				"failed":   len(failures),
			})

			if a.format == "json" {
				errs := make(map[string]string, len(failures))
				for name, err := range failures {
					errs[name] = err.Error()
				}
				return report.WriteJSON(cmd.OutOrStdout(), struct {
					Reports  map[string]*domain.Report `json:"reports"`
					Failures map[string]string         `json:"failures"`
				}{results, errs})
			}
			return report.WriteBatchSummary(cmd.OutOrStdout(), results, failures)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "number of parallel workers")
	cmd.Flags().StringVar(&mode, "mode", string(domain.ModeSession), "analysis mode: session, strategy")
	return cmd
}

func (a *application) analyzeFile(cmd *cobra.Command, path, mode string) (*domain.Report, error) {
	ctx := cmd.Context()

	klines, err := utils.ReadKlinesFromCSV(path)
	if err != nil {
		return nil, err
	}
	if mode == string(domain.ModeStrategy) {
		return a.service.AnalyzeStrategy(ctx, klines, app.StrategyRequest{})
	}
	return a.service.AnalyzeSession(ctx, klines, app.SessionRequest{})
}

package cli

import (
	"fmt"

	"tradingengine/internal/app"
	"tradingengine/internal/ports"

	"github.com/spf13/cobra"
)

func (a *application) newSessionCommand() *cobra.Command {
	var (
		startFlag string
		endFlag   string
		rows      int
		valueArea float64
	)

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run the full pipeline including the session volume profile",
		Long: `Runs indicators, bias, price levels, the volume profile of the session
window, risk parameters and signals.

The session defaults to the 30 days ending at the last bar. --start or --end
alone moves one side of that window.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			start, err := parseTimeFlag("start", startFlag)
			if err != nil {
				return err
			}
			end, err := parseTimeFlag("end", endFlag)
			if err != nil {
				return err
			}
			if rows < 0 {
				return fmt.Errorf("%w: --rows must be positive", ports.ErrInvalidConfiguration)
			}

			klines, err := a.loadKlines(ctx)
			if err != nil {
				return err
			}

			window := app.DefaultWindow(klines)
			if !start.IsZero() {
				window.Start = start
			}
			if !end.IsZero() {
				window.End = end
			}

			r, err := a.service.AnalyzeSession(ctx, klines, app.SessionRequest{
				Window:    window,
				Rows:      rows,
				ValueArea: valueArea,
			})
			if err != nil {
				return err
			}
			return a.render(ctx, cmd.OutOrStdout(), r)
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "session start (RFC3339 or 2006-01-02, UTC)")
	cmd.Flags().StringVar(&endFlag, "end", "", "session end (RFC3339 or 2006-01-02, UTC)")
	cmd.Flags().IntVar(&rows, "rows", 0, "volume profile rows (default from PROFILE_ROWS)")
	cmd.Flags().Float64Var(&valueArea, "value-area", 0, "value area fraction in (0, 1] (default from VALUE_AREA)")
	return cmd
}

func (a *application) newStrategyCommand() *cobra.Command {
	var smaPeriod int

	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Run the pipeline without a volume profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			klines, err := a.loadKlines(ctx)
			if err != nil {
				return err
			}

			r, err := a.service.AnalyzeStrategy(ctx, klines, app.StrategyRequest{SMAPeriod: smaPeriod})
			if err != nil {
				return err
			}
			return a.render(ctx, cmd.OutOrStdout(), r)
		},
	}

	cmd.Flags().IntVar(&smaPeriod, "sma", 0, "SMA period override (default from SMA_PERIOD)")
	return cmd
}

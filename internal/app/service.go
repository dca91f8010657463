package app

import (
	"context"
	"fmt"
	"time"

	"tradingengine/internal/domain"
	"tradingengine/internal/metrics"
	"tradingengine/internal/ports"
	"tradingengine/internal/risk"
	"tradingengine/internal/strategy/bias"
	"tradingengine/internal/strategy/indicators"
	"tradingengine/internal/strategy/levels"
	"tradingengine/internal/strategy/signals"
	"tradingengine/internal/strategy/volumeprofile"

	"github.com/google/uuid"
)

// DefaultSessionLength is the session used when a request carries no window.
const DefaultSessionLength = 30 * 24 * time.Hour

// Pipeline stage names, used in logs and metric labels.
const (
	StageIndicators    = "indicators"
	StageBias          = "bias"
	StageLevels        = "levels"
	StageVolumeProfile = "volume_profile"
	StageRisk          = "risk"
	StageSignals       = "signals"
)

// Config holds the analysis settings shared by every run.
type Config struct {
	Indicators indicators.Config
	Risk       risk.Config
	Rows       int
	ValueArea  float64
}

// DefaultConfig returns the stock analysis settings.
func DefaultConfig() Config {
	icfg := indicators.DefaultConfig()
	return Config{
		Indicators: icfg,
		Risk:       risk.Config{ATRPeriod: icfg.ATRPeriod},
		Rows:       volumeprofile.DefaultRows,
		ValueArea:  volumeprofile.DefaultValueArea,
	}
}

// SessionRequest parameterizes a session run. Zero fields fall back to the
// service configuration, and a zero window to DefaultWindow.
type SessionRequest struct {
	Window    volumeprofile.Window
	Rows      int
	ValueArea float64
}

// StrategyRequest parameterizes a strategy run. A zero SMAPeriod keeps the
// configured one.
type StrategyRequest struct {
	SMAPeriod int
}

// AnalysisService runs the analysis pipeline. It holds no per-run state and
// may be used from several goroutines.
type AnalysisService struct {
	cfg     Config
	logger  ports.Logger
	metrics *metrics.Recorder
}

// NewAnalysisService creates a new analysis service. rec may be nil.
func NewAnalysisService(cfg Config, logger ports.Logger, rec *metrics.Recorder) (*AnalysisService, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for AnalysisService")
	}
	if err := cfg.Indicators.Validate(); err != nil {
		return nil, err
	}
	if cfg.Risk.ATRPeriod == 0 {
		cfg.Risk.ATRPeriod = cfg.Indicators.ATRPeriod
	}
	if _, err := risk.NewManager(cfg.Risk); err != nil {
		return nil, err
	}
	if cfg.Rows == 0 {
		cfg.Rows = volumeprofile.DefaultRows
	}
	if cfg.ValueArea == 0 {
		cfg.ValueArea = volumeprofile.DefaultValueArea
	}

	return &AnalysisService{
		cfg:     cfg,
		logger:  logger,
		metrics: rec,
	}, nil
}

// Config returns the configuration the service runs with.
func (s *AnalysisService) Config() Config {
	return s.cfg
}

// DefaultWindow returns the last DefaultSessionLength of the series, ending at
// the last bar.
func DefaultWindow(klines []*domain.Kline) volumeprofile.Window {
	if len(klines) == 0 || klines[len(klines)-1] == nil {
		return volumeprofile.Window{}
	}
	end := klines[len(klines)-1].OpenTime
	return volumeprofile.Window{Start: end.Add(-DefaultSessionLength), End: end}
}

// AnalyzeSession runs the full pipeline including the volume profile of the
// session window.
func (s *AnalysisService) AnalyzeSession(ctx context.Context, klines []*domain.Kline, req SessionRequest) (*domain.Report, error) {
	if req.Window.Start.IsZero() && req.Window.End.IsZero() {
		req.Window = DefaultWindow(klines)
	}
	if req.Rows == 0 {
		req.Rows = s.cfg.Rows
	}
	if req.ValueArea == 0 {
		req.ValueArea = s.cfg.ValueArea
	}
	return s.run(ctx, domain.ModeSession, klines, s.cfg.Indicators, &req)
}

// AnalyzeStrategy runs the pipeline without a volume profile, optionally
// overriding the SMA period.
func (s *AnalysisService) AnalyzeStrategy(ctx context.Context, klines []*domain.Kline, req StrategyRequest) (*domain.Report, error) {
	icfg := s.cfg.Indicators
	if req.SMAPeriod != 0 {
		icfg.SMAPeriod = req.SMAPeriod
	}
	return s.run(ctx, domain.ModeStrategy, klines, icfg, nil)
}

// ExecuteTrade validates and sizes a trade. Nothing is sent to an exchange.
func (s *AnalysisService) ExecuteTrade(ctx context.Context, req domain.TradeRequest) (*domain.ExecutionResult, error) {
	result, err := signals.ExecuteTrade(req)
	if err != nil {
		s.logger.Warn(ctx, "Trade rejected", map[string]interface{}{
			"kind":  ports.ErrorKind(err),
			"error": err.Error(),
		})
		return nil, err
	}
	s.logger.Info(ctx, "Trade sized", map[string]interface{}{
		"entryPrice":   result.Entry.Price,
		"exitPrice":    result.Exit.Price,
		"positionSize": result.PositionSize,
	})
	return result, nil
}

func (s *AnalysisService) run(ctx context.Context, mode domain.AnalysisMode, klines []*domain.Kline, icfg indicators.Config, session *SessionRequest) (*domain.Report, error) {
	report, err := s.pipeline(ctx, mode, klines, icfg, session)
	s.metrics.RecordRun(string(mode), len(klines), err)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Analysis completed", map[string]interface{}{
		"reportID": report.ID,
		"mode":     string(mode),
		"bars":     report.Bars,
		"levels":   report.PriceLevels.Len(),
		"bias":     string(report.Bias.Overall),
		"exits":    len(report.Signals.Exits),
	})
	return report, nil
}

func (s *AnalysisService) pipeline(ctx context.Context, mode domain.AnalysisMode, klines []*domain.Kline, icfg indicators.Config, session *SessionRequest) (*domain.Report, error) {
	report := &domain.Report{
		ID:          uuid.New().String(),
		Mode:        mode,
		GeneratedAt: time.Now().UTC(),
		Bars:        len(klines),
	}
	if len(klines) > 0 && klines[0] != nil {
		report.Symbol = klines[0].Symbol
		report.Interval = klines[0].Interval
	}
	s.logger.Debug(ctx, "Starting analysis", map[string]interface{}{
		"reportID": report.ID,
		"mode":     string(mode),
		"bars":     len(klines),
	})

	// 1. Indicators
	err := s.stage(ctx, StageIndicators, func() (err error) {
		report.Indicators, err = indicators.Compute(ctx, klines, icfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 2. Bias
	err = s.stage(ctx, StageBias, func() (err error) {
		report.Bias, err = bias.Classify(klines, report.Indicators)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. Price levels
	err = s.stage(ctx, StageLevels, func() (err error) {
		report.PriceLevels, err = levels.Aggregate(klines, report.Indicators)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 4. Volume profile, session mode only
	if session != nil {
		err = s.stage(ctx, StageVolumeProfile, func() (err error) {
			report.VolumeProfile, err = volumeprofile.Build(klines, session.Window, session.Rows, session.ValueArea)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	// 5. Risk
	err = s.stage(ctx, StageRisk, func() error {
		manager, err := risk.NewManager(s.cfg.Risk)
		if err != nil {
			return err
		}
		report.Risk, err = manager.Calculate(ctx, klines, report.PriceLevels)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 6. Signals
	err = s.stage(ctx, StageSignals, func() (err error) {
		report.Signals, err = signals.Generate(klines, report.Bias, report.PriceLevels)
		return err
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// stage runs one pipeline step, logging and recording it. A failure is logged
// exactly once here and returned wrapped with the stage name.
func (s *AnalysisService) stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	s.metrics.RecordStage(name, elapsed, err)

	if err != nil {
		s.logger.Error(ctx, err, "Analysis stage failed", map[string]interface{}{
			"stage": name,
			"kind":  ports.ErrorKind(err),
		})
		return fmt.Errorf("%s stage: %w", name, err)
	}
	s.logger.Debug(ctx, "Analysis stage completed", map[string]interface{}{
		"stage":   name,
		"elapsed": elapsed.String(),
	})
	return nil
}

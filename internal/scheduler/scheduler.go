package scheduler

import (
	"context"
	"fmt"
	"sync"

	"tradingengine/internal/ports"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules. A job is never run twice at
// the same time; a tick that arrives while it is still running is skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger ports.Logger
	ctx    context.Context

	mu   sync.Mutex
	jobs map[string]*entry
}

type entry struct {
	job     Job
	running sync.Mutex
}

// New creates a scheduler whose jobs receive ctx. Schedules use the standard
// five-field cron syntax or descriptors such as "@every 5m".
func New(ctx context.Context, logger ports.Logger) (*Scheduler, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for Scheduler")
	}
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
		ctx:    ctx,
		jobs:   make(map[string]*entry),
	}, nil
}

// Register adds a job under name with the given schedule.
func (s *Scheduler) Register(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}
	e := &entry{job: job}
	if _, err := s.cron.AddFunc(spec, func() { s.execute(name, e) }); err != nil {
		return fmt.Errorf("%w: register %s job: %w", ports.ErrInvalidConfiguration, name, err)
	}
	s.jobs[name] = e
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info(s.ctx, "Scheduler started", map[string]interface{}{"jobs": len(s.jobs)})
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info(s.ctx, "Scheduler stopped")
}

// RunNow executes the named job immediately and returns its error.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: job %q", ports.ErrNotFound, name)
	}
	return s.execute(name, e)
}

func (s *Scheduler) execute(name string, e *entry) error {
	if !e.running.TryLock() {
		s.logger.Warn(s.ctx, "Skipping job, previous run still in progress", map[string]interface{}{"job": name})
		return nil
	}
	defer e.running.Unlock()

	if err := s.ctx.Err(); err != nil {
		return err
	}

	s.logger.Debug(s.ctx, "Running job", map[string]interface{}{"job": name})
	if err := e.job(s.ctx); err != nil {
		s.logger.Error(s.ctx, err, "Job failed", map[string]interface{}{"job": name})
		return err
	}
	return nil
}

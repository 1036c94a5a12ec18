package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"GoldPredict/pkg/logger"
)

var ErrUnknownJob = errors.New("scheduler: unknown job")

// Job is one unit of scheduled work. The context carries the per-run timeout.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on intervals or cron specs. A job never overlaps
// itself: a tick that fires while the previous run is active is skipped.
type Scheduler struct {
	cron    gocron.Scheduler
	log     *logger.Logger
	timeout time.Duration
	onSkip  func(job string)

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs map[string]*guardedJob
}

type Option func(*Scheduler)

// WithTimeout bounds every run. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// WithSkipHook is called with the job name whenever a tick is skipped.
func WithSkipHook(fn func(job string)) Option {
	return func(s *Scheduler) {
		s.onSkip = fn
	}
}

func New(log *logger.Logger, loc *time.Location, opts ...Option) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	cron, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron,
		log:    log.With(logger.String("component", "scheduler")),
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]*guardedJob),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Every registers job to run at a fixed interval.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	return s.add(name, gocron.DurationJob(interval), job)
}

// Cron registers job on a five-field cron spec.
func (s *Scheduler) Cron(name, spec string, job Job) error {
	return s.add(name, gocron.CronJob(spec, false), job)
}

func (s *Scheduler) add(name string, def gocron.JobDefinition, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	g := &guardedJob{name: name, run: job, sched: s}
	j, err := s.cron.NewJob(
		def,
		gocron.NewTask(func() { g.tick() }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	g.job = j
	s.jobs[name] = g
	return nil
}

// RunNow runs a registered job immediately in the caller's goroutine, still
// honoring the overlap guard. Reports whether the job actually ran.
func (s *Scheduler) RunNow(name string) (bool, error) {
	s.mu.Lock()
	g, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return g.tick(), nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", logger.Int("jobs", len(s.jobs)))
}

// Stop cancels in-flight runs and waits for gocron to drain.
func (s *Scheduler) Stop() error {
	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	s.log.Info("scheduler stopped")
	return nil
}

type guardedJob struct {
	name    string
	run     Job
	sched   *Scheduler
	job     gocron.Job
	running atomic.Bool
}

// tick runs the job unless a previous run is still active.
func (g *guardedJob) tick() bool {
	if !g.running.CompareAndSwap(false, true) {
		g.sched.log.Warn("job still running, skipping tick", logger.String("job", g.name))
		if g.sched.onSkip != nil {
			g.sched.onSkip(g.name)
		}
		return false
	}
	defer g.running.Store(false)

	ctx := g.sched.ctx
	if g.sched.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.sched.timeout)
		defer cancel()
	}

	start := time.Now()
	g.sched.log.Debug("job started", logger.String("job", g.name))
	if err := g.run(ctx); err != nil {
		g.sched.log.Error("job failed",
			logger.String("job", g.name),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return true
	}
	g.sched.log.Info("job finished",
		logger.String("job", g.name),
		logger.Duration("elapsed", time.Since(start)))
	return true
}

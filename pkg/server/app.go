package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"GoldPredict/pkg/config"
	xhttp "GoldPredict/pkg/http"
	applogger "GoldPredict/pkg/logger"
	"GoldPredict/pkg/scheduler"
)

// Scheduled job names.
const (
	JobIngest     = "price-ingest"
	JobSettlement = "settlement-sweep"
	JobPrune      = "ratelimit-prune"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	sched      *scheduler.Scheduler
	httpServer *xhttp.Server
}

// New creates a new App. The scheduler must already have its jobs registered.
func New(cfg *config.Config, log *applogger.Logger, sched *scheduler.Scheduler, httpServer *xhttp.Server) *App {
	return &App{cfg: cfg, log: log, sched: sched, httpServer: httpServer}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext runs until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	if a.cfg.Scheduler.IngestOnStart {
		if _, err := a.sched.RunNow(JobIngest); err != nil && !errors.Is(err, scheduler.ErrUnknownJob) {
			a.log.Warn("initial price ingest", applogger.Error(err))
		}
	}
	a.sched.Start()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		_ = a.sched.Stop()
		return fmt.Errorf("start http server: %w", err)
	}
	a.log.Info("goldpredict started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("store", a.cfg.Store.Backend),
		applogger.Int("port", a.cfg.Server.Port),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then drains jobs. Infrastructure clients are
// closed by the DI cleanup once Run returns.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if err := a.sched.Stop(); err != nil {
		a.log.Warn("scheduler stop error", applogger.Error(err))
		errs = append(errs, err)
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}

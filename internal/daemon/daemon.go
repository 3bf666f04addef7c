package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"paperflow/internal/checkpoint"
	"paperflow/internal/config"
	"paperflow/internal/logging"
	"paperflow/internal/services/feishu"
	"paperflow/internal/stage"
	"paperflow/internal/workflow"
)

// Daemon owns the run store and workflow engine and exposes them over
// the HTTP API. Only one daemon may run per data directory.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *checkpoint.Store
	engine *workflow.Engine
	feishu *feishu.Client

	lockPath string
	lock     *flock.Flock

	api     *apiServer
	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	Store        checkpoint.HealthSummary
	Stages       []stage.Health
}

// New constructs a daemon with initialized dependencies. The feishu
// client may be nil when the integration is disabled.
func New(cfg *config.Config, store *checkpoint.Store, engine *workflow.Engine, messenger *feishu.Client, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || engine == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, engine, and logger")
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		engine:   engine,
		feishu:   messenger,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the instance lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another paperflow daemon instance is already running")
	}

	serveCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.api.start(serveCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("paperflow daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()))
	return nil
}

// Stop shuts down the API server and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("paperflow daemon stopped")
}

// Close stops the daemon and releases the run store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the API listen address, empty until Start succeeds.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status collects runtime health for the status endpoint and CLI.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		Stages:       d.engine.Health(ctx),
	}
	if summary, err := d.store.Health(ctx); err != nil {
		d.logger.Warn("run store health query failed", logging.Error(err))
	} else {
		status.Store = summary
	}
	return status
}

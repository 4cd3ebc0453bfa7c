package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"FXSignals/pkg/config"
	xhttp "FXSignals/pkg/http"
	applogger "FXSignals/pkg/logger"
)

// Runner is a background loop bound to the app context.
type Runner interface {
	Run(ctx context.Context)
}

// Scheduled is a periodic job with its own start and graceful stop.
type Scheduled interface {
	Start()
	Stop(ctx context.Context)
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	l         *applogger.Logger
	http      *xhttp.Server
	runners   []Runner
	scheduled Scheduled
	onStart   []func(context.Context)
	closers   []io.Closer
}

// New creates an App around the HTTP server and its background runners.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, runners ...Runner) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	return &App{cfg: cfg, l: l, http: srv, runners: runners}
}

// SetRefresher attaches the periodic refresh job.
func (a *App) SetRefresher(s Scheduled) { a.scheduled = s }

// OnStart registers a hook run with the app context before serving.
func (a *App) OnStart(fn func(context.Context)) { a.onStart = append(a.onStart, fn) }

// AddCloser registers resources released after the server stops, in order.
func (a *App) AddCloser(c ...io.Closer) { a.closers = append(a.closers, c...) }

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts everything and shuts down when ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, r := range a.runners {
		go r.Run(runCtx)
	}
	for _, fn := range a.onStart {
		fn(runCtx)
	}
	if err := a.http.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	if a.scheduled != nil {
		a.scheduled.Start()
	}
	a.l.Info("fxsignals started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Bool("scheduler", a.scheduled != nil),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.scheduled != nil {
		a.scheduled.Stop(ctx)
	}
	var errs []error
	if err := a.http.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	for _, c := range a.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}

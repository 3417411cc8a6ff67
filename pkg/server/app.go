package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"LagScalper/internal/alert"
	"LagScalper/internal/service/funding"
	"LagScalper/internal/service/liquidation"
	"LagScalper/internal/usecase"
	pkgch "LagScalper/pkg/clickhouse"
	"LagScalper/pkg/config"
	xhttp "LagScalper/pkg/http"
	applogger "LagScalper/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg          *config.Config
	log          *applogger.Logger
	collector    *usecase.TickCollector
	orchestrator *usecase.SignalOrchestrator
	fundingPoll  *funding.Poller
	liqPoll      *liquidation.Poller // nil when disabled
	dispatcher   *alert.Dispatcher
	chClient     *pkgch.Client // nil when history is disabled
	httpServer   *xhttp.Server
	httpHandler  xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.TickCollector,
	orchestrator *usecase.SignalOrchestrator,
	fundingPoll *funding.Poller,
	liqPoll *liquidation.Poller,
	dispatcher *alert.Dispatcher,
	chClient *pkgch.Client,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:          cfg,
		log:          log,
		collector:    collector,
		orchestrator: orchestrator,
		fundingPoll:  fundingPoll,
		liqPoll:      liqPoll,
		dispatcher:   dispatcher,
		chClient:     chClient,
		httpHandler:  httpHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.collector.Start(ctx); err != nil {
		return fmt.Errorf("start collector: %w", err)
	}
	a.log.Info("tick collector started",
		applogger.String("btc_symbol", a.cfg.Feed.BTCSymbol),
		applogger.Strings("symbols", a.cfg.Feed.Symbols))

	if a.cfg.Funding.Enabled {
		go a.fundingPoll.Run(ctx)
		a.log.Info("funding poller started", applogger.Duration("interval", a.cfg.Funding.PollInterval))
	}
	if a.liqPoll != nil {
		go a.liqPoll.Run(ctx)
		a.log.Info("liquidation poller started", applogger.Duration("interval", a.cfg.Liquidation.PollInterval))
	}

	go a.orchestrator.Run(ctx)
	a.log.Info("orchestrator started",
		applogger.Duration("interval", a.cfg.Strategy.EvalInterval),
		applogger.Duration("cooldown", a.cfg.Strategy.Cooldown))

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	a.dispatcher.Notice(ctx, fmt.Sprintf("lag scalper started, watching %d symbols against %s",
		len(a.cfg.Feed.Symbols), a.cfg.Feed.BTCSymbol))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.dispatcher.Notice(ctx, "lag scalper shutting down")
	a.dispatcher.Drain(a.cfg.Server.ShutdownTimeout)

	if err := a.collector.Shutdown(ctx); err != nil {
		a.log.Warn("collector stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}

// Package app assembles the web application: configuration, logging,
// metrics, the backend client, the pipeline and the HTTP server, with
// signal-driven graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"tableone/internal/analysis"
	"tableone/internal/client"
	"tableone/internal/config"
	"tableone/internal/exporter"
	"tableone/internal/infrastructure"
	"tableone/internal/pipeline"
	"tableone/internal/privacy"
	"tableone/internal/report"
	"tableone/internal/session"
	transporthttp "tableone/internal/transport/http"
	"tableone/internal/websocket"
)

// Application holds the wired components of the web server.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Session *session.Store
	Runner  *pipeline.Runner
	Hub     *websocket.Hub
	Server  *http.Server

	version string
}

// New loads configuration and wires the full component graph.
func New(version string) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	metrics := infrastructure.NewMetrics(prometheus.DefaultRegisterer)
	backendClient := client.New(cfg.Backend,
		client.WithMetrics(metrics),
		client.WithLogger(infrastructure.WithComponent(logger, "backend-client")))

	store := session.NewStore()
	gate := privacy.NewGate()
	detector := privacy.NewDetector(cfg.Privacy.ExtraWhitelist, logger)
	reporter := report.NewBackendReporter(backendClient, logger)
	tokens := analysis.StaticToken(cfg.Backend.Token)
	hub := websocket.NewHub(infrastructure.WithComponent(logger, "websocket-hub"))
	service := analysis.NewService(backendClient, reporter, analysis.WithLogger(logger))

	runner := pipeline.NewRunner(pipeline.Deps{
		Config:   cfg,
		Session:  store,
		Service:  service,
		Tokens:   tokens,
		Detector: detector,
		Gate:     gate,
		Reporter: reporter,
		Sink:     transporthttp.NewHubSink(hub),
		Metrics:  metrics,
		Logger:   logger,
	})

	router := transporthttp.NewRouter(transporthttp.Deps{
		Config:  cfg,
		Runner:  runner,
		Session: store,
		Gate:    gate,
		Service: service,
		Tokens:  tokens,
		Excel:   exporter.NewExcelExporter(logger),
		Word:    exporter.NewWordExporter(backendClient, logger),
		CSV:     exporter.NewCSVExporter(logger),
		Hub:     hub,
		Logger:  logger,
		Version: version,
	})

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Session: store,
		Runner:  runner,
		Hub:     hub,
		Server:  server,
		version: version,
	}, nil
}

// Run serves until the context is cancelled or an interrupt arrives, then
// shuts down gracefully within the configured timeout.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Hub.Start()
	defer a.Hub.Stop()

	a.Logger.InfoContext(ctx, "starting server",
		slog.String("version", a.version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("backend", a.Config.Backend.BaseURL))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if closeErr := infrastructure.CloseLogFile(); closeErr != nil {
		a.Logger.Error("closing log file", slog.String("error", closeErr.Error()))
	}
	return err
}

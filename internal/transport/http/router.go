package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tableone/internal/analysis"
	"tableone/internal/config"
	"tableone/internal/exporter"
	"tableone/internal/middleware"
	"tableone/internal/pipeline"
	"tableone/internal/privacy"
	"tableone/internal/session"
	"tableone/internal/websocket"
)

// Deps collects everything the router needs.
type Deps struct {
	Config  *config.Config
	Runner  *pipeline.Runner
	Session *session.Store
	Gate    *privacy.Gate
	Service *analysis.Service
	Tokens  analysis.TokenSource
	Excel   *exporter.ExcelExporter
	Word    *exporter.WordExporter
	CSV     *exporter.CSVExporter
	Hub     *websocket.Hub
	Logger  *slog.Logger
	Version string
}

// NewRouter builds the chi router with the full middleware chain and all
// routes mounted.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	analyze := NewAnalyzeHandler(deps.Runner, deps.Session, deps.Gate, deps.Config.Limits.MaxFileSize, logger)
	priv := NewPrivacyHandler(deps.Runner, deps.Gate, analyze, logger)
	export := NewExportHandler(deps.Session, deps.Service, deps.Excel, deps.Word, deps.CSV, deps.Tokens, logger)
	sess := NewSessionHandler(deps.Session, logger)
	health := NewHealthHandler(deps.Version)

	r := chi.NewRouter()

	r.Use(middleware.CorrelationID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Compress(5))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		ExposedHeaders: []string{"Content-Disposition", middleware.CorrelationHeader},
	}))

	r.Get("/healthz", health.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWS(deps.Hub, w, req)
	})

	limiter := middleware.NewRateLimiter(deps.Config.Server.RateLimitRPS, deps.Config.Server.RateLimitBurst, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Use(middleware.Timeout(deps.Config.Server.RequestTimeout))

		r.Post("/analyze", analyze.Analyze)
		r.Get("/analyze/status", analyze.Status)

		r.Route("/privacy", func(r chi.Router) {
			r.Post("/confirm", priv.Confirm)
			r.Post("/cancel", priv.Cancel)
		})

		r.Route("/export", func(r chi.Router) {
			r.Post("/excel", export.Excel)
			r.Post("/word", export.Word)
			r.Post("/csv", export.CSV)
			r.Post("/summary", export.Summary)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sess.Get)
			r.Get("/export", sess.Export)
			r.Post("/import", sess.Import)
		})
	})

	return r
}

package httpserver

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/cyberrisk-advisor/internal/application/analysis"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/domain/ai"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/logger"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/middleware"
)

const (
	serviceName        = "CyberRisk Advisor"
	serviceVersion     = "1.0.0"
	serviceDescription = "CyberRisk Advisor is an AGI-powered cybersecurity copilot that analyzes raw logs, " +
		"detects threats, scores overall risk, and generates incident-ready response plans."
)

//go:embed web/index.html
var webFS embed.FS

var landing = template.Must(template.ParseFS(webFS, "web/index.html"))

// Options carries the optional parts of the HTTP surface.
type Options struct {
	// APIKeys enables static bearer auth on /analyze_logs when non-empty.
	APIKeys map[string]string
	// Checkers back GET /ready.
	Checkers map[string]middleware.HealthChecker
	// Metrics enables request metrics and GET /metrics when set.
	Metrics *middleware.Metrics
}

type Router struct {
	analysisSvc *appanalysis.Service
}

func NewRouter(analysisSvc *appanalysis.Service, opts Options) http.Handler {
	r := &Router{analysisSvc: analysisSvc}
	mux := chi.NewRouter()

	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware)
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	// Any origin, any method, any header, credentials allowed. The origin is
	// reflected because browsers reject "*" together with credentials.
	mux.Use(anyMethodCORS(cors.Options{
		AllowOriginFunc:  func(_ *http.Request, _ string) bool { return true },
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	}))

	mux.Get("/", handleLanding)
	mux.Get("/health", middleware.HealthHandler)
	mux.Get("/ready", middleware.ReadinessHandler(opts.Checkers))
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		rt.Post("/analyze_logs", r.wrap(r.handleAnalyzeLogs))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, detail := classify(err)
			if status >= http.StatusInternalServerError {
				logger.L().Error("request failed",
					zap.String("path", req.URL.Path),
					zap.Int("status", status),
					zap.Error(err),
				)
			}
			middleware.WriteDetail(w, status, detail)
		}
	}
}

// classify maps the error taxonomy to an HTTP status and a detail message.
func classify(err error) (int, string) {
	var (
		vErr  *middleware.ValidationError
		upErr *ai.UpstreamError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, vErr.Error()
	case errors.Is(err, ai.ErrMissingAPIKey):
		return http.StatusInternalServerError, "AGI_API_KEY is not configured on the server. Set it in .env or the config file."
	case errors.As(err, &upErr):
		status := upErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, upErr.Error()
	case errors.Is(err, ai.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, err.Error()
	case errors.Is(err, ai.ErrUpstreamUnavailable), errors.Is(err, ai.ErrEmptyCompletion):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// POST /analyze_logs
// Body: {"logs": "...", "environment": "...", "question": "..."}
func (r *Router) handleAnalyzeLogs(w http.ResponseWriter, req *http.Request) error {
	body, err := middleware.DecodeAnalysisRequest(req.Body)
	if err != nil {
		return err
	}

	if client := middleware.GetClientFromContext(req.Context()); client != "" {
		logger.Debugf("analyze_logs client=%s", client)
	}

	res, err := r.analysisSvc.Analyze(req.Context(), body)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Analysis-ID", res.ID)
	return json.NewEncoder(w).Encode(res.Response)
}

// GET /
func handleLanding(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := landing.Execute(w, map[string]string{
		"Name":        serviceName,
		"Description": serviceDescription,
		"Version":     serviceVersion,
	})
	if err != nil {
		logger.Errorf("render landing page: %v", err)
	}
}

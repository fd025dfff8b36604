package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/tpa-risk/internal/application/riskanalysis"
	domai "github.com/bryanwahyu/tpa-risk/internal/domain/ai"
	"github.com/bryanwahyu/tpa-risk/internal/domain/assessment"
	"github.com/bryanwahyu/tpa-risk/internal/domain/organizations"
	"github.com/bryanwahyu/tpa-risk/internal/domain/runerrors"
	"github.com/bryanwahyu/tpa-risk/internal/middleware"
)

// Analyzer is the slice of riskanalysis.Service the HTTP surface drives.
type Analyzer interface {
	RunOne(ctx context.Context, id organizations.ID) (riskanalysis.Outcome, error)
	RunBatch(ctx context.Context, limit int) (riskanalysis.BatchReport, error)
	Analyses(ctx context.Context, orgID string, page, pageSize int) (assessment.PaginatedResult, error)
	RunErrors(ctx context.Context, orgID string, limit int) ([]*runerrors.RunError, error)
}

type Options struct {
	Log            *slog.Logger
	APIKeys        map[string]string
	Limiter        *middleware.RateLimiter
	Metrics        *middleware.Metrics
	Health         map[string]middleware.HealthChecker
	AllowedOrigins []string
}

type Router struct {
	svc     Analyzer
	log     *slog.Logger
	metrics *middleware.Metrics
}

func NewRouter(svc Analyzer, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{svc: svc, log: opts.Log, metrics: opts.Metrics}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging(opts.Log))
	mux.Use(opts.Metrics.Middleware)
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	if opts.Limiter != nil {
		mux.Use(middleware.RateLimit(opts.Limiter))
	}

	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", opts.Metrics.Handler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleBatch))
		rt.Route("/organizations/{id}", func(rt chi.Router) {
			rt.Use(validateOrganization)
			rt.Post("/analyze", r.wrap(r.handleAnalyze))
			rt.Get("/analyses", r.wrap(r.handleAnalyses))
			rt.Get("/errors", r.wrap(r.handleErrors))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks an error as the caller's fault.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, organizations.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				r.log.Error("request failed", "path", req.URL.Path, "error", err)
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func validateOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err := middleware.ValidateOrganizationID(chi.URLParam(req, "id")); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, req)
	})
}

// detach keeps a started run going when the client goes away; the
// pipeline has no cancellation points of its own.
func detach(req *http.Request) context.Context {
	return context.WithoutCancel(req.Context())
}

// POST /v1/organizations/{id}/analyze
// A failed organization still returns its Outcome, with the status of its cause.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	id := organizations.ID(chi.URLParam(req, "id"))

	r.metrics.AnalysisStarted()
	out, err := r.svc.RunOne(detach(req), id)
	if err != nil {
		r.metrics.AnalysisFinished()
		return err
	}
	r.metrics.AnalysisFinished(string(out.Status))

	status := http.StatusOK
	if out.Status == riskanalysis.StatusFailed {
		status = statusFor(out.Err)
	}
	return writeJSON(w, status, out)
}

// POST /v1/analyze?limit=N
func (r *Router) handleBatch(w http.ResponseWriter, req *http.Request) error {
	limit, err := middleware.ParseInt(req.URL.Query().Get("limit"))
	if err != nil {
		return badRequest{err}
	}

	r.metrics.AnalysisStarted()
	report, err := r.svc.RunBatch(detach(req), middleware.ValidateLimit(limit, 0))
	statuses := make([]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		statuses = append(statuses, string(o.Status))
	}
	r.metrics.AnalysisFinished(statuses...)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, report)
}

// GET /v1/organizations/{id}/analyses?page=&page_size=
func (r *Router) handleAnalyses(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	page, err := middleware.ParseInt(q.Get("page"))
	if err != nil {
		return badRequest{err}
	}
	size, err := middleware.ParseInt(q.Get("page_size"))
	if err != nil {
		return badRequest{err}
	}
	page, size = middleware.ValidatePage(page, size)

	list, err := r.svc.Analyses(req.Context(), chi.URLParam(req, "id"), page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/organizations/{id}/errors?limit=
func (r *Router) handleErrors(w http.ResponseWriter, req *http.Request) error {
	limit, err := middleware.ParseInt(req.URL.Query().Get("limit"))
	if err != nil {
		return badRequest{err}
	}
	list, err := r.svc.RunErrors(req.Context(), chi.URLParam(req, "id"), middleware.ValidateLimit(limit, 20))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

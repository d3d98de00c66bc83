// Package http exposes the expense store and the budget session over a
// JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	applog "budgettracker/internal/log"
	"budgettracker/internal/middleware/ratelimit"
	"budgettracker/internal/middleware/security"
	"budgettracker/internal/middleware/trace"
	"budgettracker/internal/services"
)

// Server wraps http.Server with the API routes and middleware chain.
type Server struct {
	http.Server
	expenses *services.ExpenseService
	session  *services.BudgetService
	ready    func(context.Context) error
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	logger   *applog.Logger
}

// Options tunes the server. Zero values mean no cross-origin access, the
// default rate limit and an always-ready probe.
type Options struct {
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	TrustedProxies     []string
	Logger             *applog.Logger
	// Ready reports whether dependencies are reachable for /readyz.
	Ready func(context.Context) error
}

func NewServer(addr string, expenses *services.ExpenseService, session *services.BudgetService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	resolver := security.NewIPResolver()
	for _, cidr := range opts.TrustedProxies {
		if err := resolver.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}

	s := &Server{
		expenses: expenses,
		session:  session,
		ready:    opts.Ready,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerWindow: opts.RateLimitPerMinute,
			Window:            time.Minute,
		}),
		tracer: trace.NewMiddleware(resolver.ClientIP, logger.Logger),
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	api := http.NewServeMux()
	api.HandleFunc("/api/expenses", s.handleExpenses)
	api.HandleFunc("/api/session", s.handleSession)
	api.HandleFunc("/api/session/expenses", s.handleSessionExpense)
	api.HandleFunc("/api/session/budget", s.handleSessionBudget)
	api.HandleFunc("/api/session/chart", s.handleSessionChart)
	mux.Handle("/api/", s.limiter.Middleware(resolver.ClientIP, func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})(api))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	var handler http.Handler = mux
	handler = security.CORS(opts.CORSAllowedOrigins)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = applog.RequestIDMiddleware(trace.GetRequestID)(handler)
	handler = applog.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and then the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	metrics := s.tracer.GetMetrics()
	s.logger.Info("HTTP server stopping",
		"total_requests", metrics.TotalRequests,
		"server_errors", metrics.ServerErrors)
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).Warn("Readiness check failed", slog.String("error", err.Error()))
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Package http exposes the ledger as a JSON API: statement imports, reports,
// keyword overrides and the catalog of banks, categories and currencies.
// Handlers stay thin and delegate to the services package; everything under
// /api is scoped to the user identified by the X-User-ID header.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "vibebudget/internal/log"
	"vibebudget/internal/middleware/ratelimit"
	"vibebudget/internal/middleware/security"
	"vibebudget/internal/middleware/trace"
	"vibebudget/internal/services"
	"vibebudget/internal/storage"
)

// appMetrics tracks coarse application counters for the metrics endpoint.
type appMetrics struct {
	startedAt    time.Time
	importsTotal int64
	rowsImported int64
	rowsSkipped  int64
}

type Server struct {
	http.Server

	store    *storage.SQLiteRepository
	imports  *services.ImportService
	reports  *services.ReportService
	keywords *services.KeywordService

	sheetSource ImportSource

	logger      *applog.Logger
	structured  *applog.StructuredLogger
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	headers     *security.HeadersMiddleware

	metrics      appMetrics
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store *storage.SQLiteRepository, imports *services.ImportService, reports *services.ReportService, keywords *services.KeywordService, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}

	s := &Server{
		store:       store,
		imports:     imports,
		reports:     reports,
		keywords:    keywords,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:    security.NewDetector(),
		metrics:     appMetrics{startedAt: time.Now()},
	}
	s.structured = applog.NewStructuredLogger(s.logger)
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)
	s.headers = security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/imports", s.withUser(s.handleImport))
	mux.HandleFunc("POST /api/imports/sheet", s.withUser(s.handleSheetImport))

	mux.HandleFunc("GET /api/reports/pivot", s.withUser(s.handlePivotReport))
	mux.HandleFunc("GET /api/reports/stats", s.withUser(s.handleStatsReport))

	mux.HandleFunc("GET /api/transactions", s.withUser(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withUser(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withUser(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withUser(s.handleUpdateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}/category", s.withUser(s.handleSetTransactionCategory))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withUser(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/banks", s.withUser(s.handleListBanks))
	mux.HandleFunc("POST /api/banks", s.withUser(s.handleCreateBank))
	mux.HandleFunc("DELETE /api/banks/{id}", s.withUser(s.handleDeleteBank))

	mux.HandleFunc("GET /api/categories", s.withUser(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withUser(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withUser(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/currencies", s.withUser(s.handleListCurrencies))
	mux.HandleFunc("POST /api/currencies", s.withUser(s.handleCreateCurrency))
	mux.HandleFunc("DELETE /api/currencies/{id}", s.withUser(s.handleDeleteCurrency))

	mux.HandleFunc("GET /api/keywords", s.withUser(s.handleListKeywords))
	mux.HandleFunc("POST /api/keywords", s.withUser(s.handleSaveKeyword))
	mux.HandleFunc("DELETE /api/keywords/{id}", s.withUser(s.handleDeleteKeyword))
	mux.HandleFunc("GET /api/keywords/suggest", s.withUser(s.handleSuggestKeyword))
	mux.HandleFunc("POST /api/keywords/reclassify", s.withUser(s.handleReclassify))

	handler := http.Handler(s.headers.Middleware(s.withRateLimit(mux)))
	handler = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = applog.Middleware(s.logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// SetSheetSource connects a spreadsheet import source. Without one the
// sheet import route answers 503.
func (s *Server) SetSheetSource(src ImportSource) {
	s.sheetSource = src
}

// withRateLimit throttles mutating requests per client IP. Reads stay
// unthrottled: report polling is the expected access pattern.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ExtractClientIP(r))
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			clientIP := s.detector.ExtractClientIP(r)
			if !s.rateLimiter.Allow(clientIP) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldClientIP, clientIP,
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path)
				TooManyRequestsError().Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

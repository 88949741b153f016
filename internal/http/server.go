// Package http exposes the JSON API consumed by the single-page frontend:
// CRUD over the finance records plus the dashboard projection endpoints.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/EedwinGglez11/dinaree/internal/cache"
	"github.com/EedwinGglez11/dinaree/internal/core"
	"github.com/EedwinGglez11/dinaree/internal/project"
	"github.com/EedwinGglez11/dinaree/internal/sheets"
)

// Store is the persistence surface the handlers need. *storage.Repository
// implements it.
type Store interface {
	LoadState(ctx context.Context) (core.FinanceState, error)
	Version(ctx context.Context) (int64, error)

	CreateIncome(ctx context.Context, in core.Income) (core.Income, int64, error)
	UpdateIncome(ctx context.Context, in core.Income) (int64, error)
	DeleteIncome(ctx context.Context, id string) (int64, error)

	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, int64, error)
	UpdateExpense(ctx context.Context, e core.Expense) (int64, error)
	DeleteExpense(ctx context.Context, id string) (int64, error)

	CreateLoan(ctx context.Context, l core.Loan) (core.Loan, int64, error)
	UpdateLoan(ctx context.Context, l core.Loan) (int64, error)
	DeleteLoan(ctx context.Context, id string) (int64, error)

	CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, int64, error)
	UpdateCreditCard(ctx context.Context, c core.CreditCard) (int64, error)
	DeleteCreditCard(ctx context.Context, id string) (int64, error)

	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, int64, error)
	UpdateGoal(ctx context.Context, g core.Goal) (int64, error)
	DeleteGoal(ctx context.Context, id string) (int64, error)
}

// EventPublisher notifies downstream consumers that the finance state moved
// to a new version. A nil publisher disables events.
type EventPublisher interface {
	PublishStateChanged(ctx context.Context, section, recordID string, version int64) error
}

type Server struct {
	http.Server

	store       Store
	events      EventPublisher
	reportSink  sheets.ReportWriter
	months      int
	rateLimiter *rateLimiter

	// Projection results memoized per state version. A mutation bumps the
	// version, so stale entries simply stop being hit and age out.
	seriesCache   *cache.LRU[project.Series]
	totalsCache   *cache.LRU[project.PeriodTotals]
	categoryCache *cache.LRU[project.Breakdown]
	upcomingCache *cache.LRU[[]core.PaymentEvent]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer wires routes and caches, returning a ready-to-run server.
// reportSink may be nil; POST /api/report/export then answers 503.
func NewServer(addr string, store Store, events EventPublisher, reportSink sheets.ReportWriter, projectionMonths int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:            store,
		events:           events,
		reportSink:       reportSink,
		months:           projectionMonths,
		rateLimiter:      newRateLimiter(),
		seriesCache:      cache.NewLRU[project.Series](100, 5*time.Minute),
		totalsCache:      cache.NewLRU[project.PeriodTotals](100, 5*time.Minute),
		categoryCache:    cache.NewLRU[project.Breakdown](100, 5*time.Minute),
		upcomingCache:    cache.NewLRU[[]core.PaymentEvent](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/incomes", s.withRequestContext(s.handleListIncomes))
	mux.HandleFunc("POST /api/incomes", s.withRequestContext(s.handleCreateIncome))
	mux.HandleFunc("PUT /api/incomes/{id}", s.withRequestContext(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /api/incomes/{id}", s.withRequestContext(s.handleDeleteIncome))

	mux.HandleFunc("GET /api/expenses", s.withRequestContext(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withRequestContext(s.handleCreateExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withRequestContext(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withRequestContext(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/loans", s.withRequestContext(s.handleListLoans))
	mux.HandleFunc("POST /api/loans", s.withRequestContext(s.handleCreateLoan))
	mux.HandleFunc("PUT /api/loans/{id}", s.withRequestContext(s.handleUpdateLoan))
	mux.HandleFunc("DELETE /api/loans/{id}", s.withRequestContext(s.handleDeleteLoan))

	mux.HandleFunc("GET /api/cards", s.withRequestContext(s.handleListCards))
	mux.HandleFunc("POST /api/cards", s.withRequestContext(s.handleCreateCard))
	mux.HandleFunc("PUT /api/cards/{id}", s.withRequestContext(s.handleUpdateCard))
	mux.HandleFunc("DELETE /api/cards/{id}", s.withRequestContext(s.handleDeleteCard))

	mux.HandleFunc("GET /api/goals", s.withRequestContext(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withRequestContext(s.handleCreateGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.withRequestContext(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withRequestContext(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/dashboard/summary", s.withRequestContext(s.handleDashboardSummary))
	mux.HandleFunc("GET /api/dashboard/projection", s.withRequestContext(s.handleDashboardProjection))
	mux.HandleFunc("GET /api/dashboard/categories", s.withRequestContext(s.handleDashboardCategories))
	mux.HandleFunc("GET /api/dashboard/upcoming", s.withRequestContext(s.handleDashboardUpcoming))

	mux.HandleFunc("GET /api/report", s.withRequestContext(s.handleReport))
	mux.HandleFunc("POST /api/report/export", s.withRequestContext(s.handleReportExport))

	return s
}

// withRequestContext adds a request ID, structured request logging, security
// headers, and per-IP rate limiting on mutating methods.
func (s *Server) withRequestContext(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		mutating := r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete
		if mutating && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"request_id", requestID,
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			errorJSON(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.seriesCache.CleanExpired() +
				s.totalsCache.CleanExpired() +
				s.categoryCache.CleanExpired() +
				s.upcomingCache.CleanExpired()
			if cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// publishStateChanged fires the event best-effort: a broker outage must not
// fail the mutation that already committed.
func (s *Server) publishStateChanged(ctx context.Context, section, recordID string, version int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishStateChanged(ctx, section, recordID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish state-changed event",
			"section", section,
			"record_id", recordID,
			"version", version,
			"error", err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Version(r.Context()); err != nil {
		errorJSON(w, http.StatusServiceUnavailable, "storage not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Package http exposes the ledger over a JSON API. Handlers stay thin:
// they parse the request, call one store command, and translate the error
// into a status code. All domain rules live behind the store.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bukocash/internal/cache"
	applog "bukocash/internal/log"
	"bukocash/internal/store"
)

// rateLimitPerMinute caps mutating requests per client IP.
const rateLimitPerMinute = 60

// SyncStatus reports and controls the remote mirror's connectivity flag.
// The mirror syncer implements it; a nil value means no mirror.
type SyncStatus interface {
	SetOnline(online bool)
	IsOnline() bool
}

type Server struct {
	http.Server
	store         *store.Store
	syncStatus    SyncStatus
	lookaheadDays int
	rateLimiter   *rateLimiter
	metrics       *securityMetrics
	exportCache   *cache.LRUCache[string]
	logger        *applog.Logger
	httpLog       *applog.HTTPLogger
	shutdownOnce  sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, st *store.Store, syncStatus SyncStatus, lookaheadDays int, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		store:         st,
		syncStatus:    syncStatus,
		lookaheadDays: lookaheadDays,
		rateLimiter:   newRateLimiter(rateLimitPerMinute),
		metrics:       &securityMetrics{},
		exportCache:   cache.NewLRUCache[string](4, 10*time.Minute),
		logger:        logger,
		httpLog:       applog.NewHTTPLogger(logger),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.guard(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.guard(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.guard(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.guard(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/transactions/export", s.guard(s.handleExportCSV))

	mux.HandleFunc("GET /api/wallets", s.guard(s.handleListWallets))
	mux.HandleFunc("POST /api/wallets", s.guard(s.handleCreateWallet))
	mux.HandleFunc("PUT /api/wallets/{id}", s.guard(s.handleUpdateWallet))
	mux.HandleFunc("DELETE /api/wallets/{id}", s.guard(s.handleDeleteWallet))

	mux.HandleFunc("GET /api/categories", s.guard(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.guard(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.guard(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/recurring", s.guard(s.handleListRules))
	mux.HandleFunc("POST /api/recurring", s.guard(s.handleCreateRule))
	mux.HandleFunc("DELETE /api/recurring/{id}", s.guard(s.handleDeleteRule))
	mux.HandleFunc("POST /api/recurring/{id}/confirm", s.guard(s.handleConfirmRule))
	mux.HandleFunc("POST /api/recurring/process", s.guard(s.handleProcessRecurring))
	mux.HandleFunc("GET /api/recurring/upcoming", s.guard(s.handleUpcoming))

	mux.HandleFunc("GET /api/budgets", s.guard(s.handleBudgetReport))
	mux.HandleFunc("PUT /api/budgets", s.guard(s.handleSetBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.guard(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/metrics", s.guard(s.handleMetrics))

	mux.HandleFunc("GET /api/settings", s.guard(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.guard(s.handleUpdateSettings))
	mux.HandleFunc("POST /api/reset", s.guard(s.handleReset))
	mux.HandleFunc("GET /api/sync", s.guard(s.handleSyncStatus))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// guard adds security headers, rate limiting, and request logging.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), applog.LoggerContextKey,
			s.logger.With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.httpLog.LogStart(ctx, r, clientIP)

		// Mutations are rate limited; reads are not.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.metrics.recordRateLimitHit()
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.httpLog.LogEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"rateLimitHits": s.metrics.rateLimitHitCount(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.CheckIntegrity(); err != nil {
		s.logger.ErrorContext(r.Context(), "Integrity check failed", applog.FieldError, err.Error())
		writeError(w, http.StatusServiceUnavailable, "ledger integrity check failed")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

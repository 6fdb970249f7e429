// Package http exposes the REST API: transaction CRUD, period reports, and
// report exports.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/cache"
	"fintrack/internal/services"
)

// Pinger is implemented by stores that can verify their backing connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server

	transactions *services.TransactionService
	reports      *services.ReportService
	pinger       Pinger

	rateLimiter *rateLimiter
	metrics     securityMetrics

	// Report responses are cached per owner; any write by an owner bumps
	// their epoch, orphaning every cached report for that owner.
	reportCache  *cache.LRUCache[services.ReportResult]
	cacheManager *cache.Manager

	epochMu     sync.Mutex
	ownerEpochs map[string]uint64

	shutdownOnce sync.Once
}

// Options tunes server construction. Zero values fall back to defaults.
type Options struct {
	ReportCacheSize int
	ReportCacheTTL  time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, transactions *services.TransactionService, reports *services.ReportService, pinger Pinger, opts Options) *Server {
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = 256
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		transactions: transactions,
		reports:      reports,
		pinger:       pinger,
		rateLimiter:  newRateLimiter(),
		reportCache:  cache.NewLRUCache[services.ReportResult](opts.ReportCacheSize, opts.ReportCacheTTL),
		cacheManager: cache.NewManager(),
		ownerEpochs:  make(map[string]uint64),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.withMiddleware(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/report", s.withMiddleware(s.handleReport))
	mux.HandleFunc("GET /api/report/export", s.withMiddleware(s.handleReportExport))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

type contextKey string

const requestIDKey contextKey = "request_id"

// withMiddleware adds security headers, rate limiting on writes, request IDs
// and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := uuid.NewString()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if detectSuspiciousRequest(r, &s.metrics) {
			slog.WarnContext(ctx, "Suspicious request detected",
				"request_id", requestID,
				"client_ip", clientIP,
				"url", r.URL.String())
		}

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP, &s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Request-ID", requestID)

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

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// ownerID extracts the caller identity. Every /api route requires it.
func ownerID(r *http.Request) (string, bool) {
	owner := r.Header.Get("X-Owner-ID")
	return owner, owner != ""
}

func (s *Server) ownerEpoch(owner string) uint64 {
	s.epochMu.Lock()
	defer s.epochMu.Unlock()
	return s.ownerEpochs[owner]
}

// bumpOwnerEpoch invalidates all cached reports for an owner.
func (s *Server) bumpOwnerEpoch(owner string) {
	s.epochMu.Lock()
	defer s.epochMu.Unlock()
	s.ownerEpochs[owner]++
}

func (s *Server) reportCacheKey(owner string, granularity, value, start, end string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		owner, strconv.FormatUint(s.ownerEpoch(owner), 10), granularity, value, start, end)
}

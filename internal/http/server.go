// Package http provides the HTMX-driven web server: the dashboard page, its
// partials and the mutation endpoints for debts, people, categories and the
// card ledger.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fiado/internal/cache"
	"fiado/internal/core"
	"fiado/internal/services"
	"fiado/internal/storage"
	appweb "fiado/web"
)

type Server struct {
	http.Server
	templates   *template.Template
	store       storage.Store
	debts       *services.DebtService
	rateLimiter *rateLimiter
	secMetrics  securityMetrics

	// Read caches backing the dashboard partials. Any confirmed mutation
	// purges the affected cache; partials always re-aggregate from the
	// cached snapshot.
	debtsCache  *cache.LRUCache[[]core.Debt]
	peopleCache *cache.LRUCache[[]core.Person]
	catsCache   *cache.LRUCache[[]core.Category]
	cacheMgr    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, store storage.Store, debts *services.DebtService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       store,
		debts:       debts,
		rateLimiter: newRateLimiter(),
		debtsCache:  cache.NewLRUCache[[]core.Debt](8, 5*time.Minute),
		peopleCache: cache.NewLRUCache[[]core.Person](8, 10*time.Minute),
		catsCache:   cache.NewLRUCache[[]core.Category](8, 10*time.Minute),
		cacheMgr:    cache.NewManager(),
	}

	s.cacheMgr.Register(s.debtsCache)
	s.cacheMgr.Register(s.peopleCache)
	s.cacheMgr.Register(s.catsCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/{$}", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Dashboard partials
	mux.HandleFunc("/ui/metrics", s.withSecurityHeaders(s.handleMetricsPartial))
	mux.HandleFunc("/ui/debts-by-person", s.withSecurityHeaders(s.handleDebtsByPerson))
	mux.HandleFunc("/ui/debts-by-month", s.withSecurityHeaders(s.handleDebtsByMonth))
	mux.HandleFunc("/ui/debt-list", s.withSecurityHeaders(s.handleDebtList))

	// Debts
	mux.HandleFunc("/debts", s.withSecurityHeaders(s.handleCreateDebt))
	mux.HandleFunc("/debts/split", s.withSecurityHeaders(s.handleSplitDebts))
	mux.HandleFunc("/debts/installments", s.withSecurityHeaders(s.handleInstallmentDebts))
	mux.HandleFunc("/debts/{id}/pay", s.withSecurityHeaders(s.handlePayDebt))
	mux.HandleFunc("/debts/{id}", s.withSecurityHeaders(s.handleDeleteDebt))

	// People and categories
	mux.HandleFunc("/people", s.withSecurityHeaders(s.handlePeople))
	mux.HandleFunc("/people/{id}", s.withSecurityHeaders(s.handleDeletePerson))
	mux.HandleFunc("/categories", s.withSecurityHeaders(s.handleCategories))
	mux.HandleFunc("/categories/{id}", s.withSecurityHeaders(s.handleDeleteCategory))

	// Personal expenses
	mux.HandleFunc("/expenses", s.withSecurityHeaders(s.handlePersonalExpenses))
	mux.HandleFunc("/expenses/{id}/pay", s.withSecurityHeaders(s.handlePayPersonalExpense))
	mux.HandleFunc("/expenses/{id}", s.withSecurityHeaders(s.handleDeletePersonalExpense))

	// Cards, bills and card expenses
	mux.HandleFunc("/cards", s.withSecurityHeaders(s.handleCards))
	mux.HandleFunc("/cards/{id}/bills", s.withSecurityHeaders(s.handleCardBills))
	mux.HandleFunc("/cards/{id}", s.withSecurityHeaders(s.handleDeleteCard))
	mux.HandleFunc("/bills/{id}/pay", s.withSecurityHeaders(s.handlePayBill))
	mux.HandleFunc("/bills/{id}/expenses", s.withSecurityHeaders(s.handleBillExpenses))
	mux.HandleFunc("/bills/{id}", s.withSecurityHeaders(s.handleDeleteBill))
	mux.HandleFunc("/card-expenses/{id}", s.withSecurityHeaders(s.handleDeleteCardExpense))

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		// Generate request ID for tracing
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutations only; partial refreshes are cheap and frequent.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, &s.secMetrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

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
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

const snapshotKey = "all"

// getDebts returns the full debt snapshot, served from cache when fresh.
// Aggregation always happens in-process over this snapshot.
func (s *Server) getDebts(ctx context.Context) ([]core.Debt, error) {
	if debts, found := s.debtsCache.Get(snapshotKey); found {
		result := make([]core.Debt, len(debts))
		copy(result, debts)
		return result, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	debts, err := s.store.ListDebts(cctx)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	s.debtsCache.Set(snapshotKey, debts)
	return debts, nil
}

func (s *Server) getPeople(ctx context.Context) ([]core.Person, error) {
	if people, found := s.peopleCache.Get(snapshotKey); found {
		return people, nil
	}
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	s.peopleCache.Set(snapshotKey, people)
	return people, nil
}

func (s *Server) getCategories(ctx context.Context) ([]core.Category, error) {
	if cats, found := s.catsCache.Get(snapshotKey); found {
		return cats, nil
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	s.catsCache.Set(snapshotKey, cats)
	return cats, nil
}

// invalidateDebts drops the debt snapshot after a confirmed mutation. Every
// aggregate is derived from the snapshot, so one purge covers them all.
func (s *Server) invalidateDebts() {
	s.debtsCache.Purge()
}

func (s *Server) invalidatePeople() {
	s.peopleCache.Purge()
	// Debt rows join person names; a deleted person changes the snapshot too.
	s.debtsCache.Purge()
}

func (s *Server) invalidateCategories() {
	s.catsCache.Purge()
	s.debtsCache.Purge()
}

// Package http exposes the ledger as a JSON API.
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

	"giro/internal/core"
)

// Ledger is the entry-side surface the handlers need.
type Ledger interface {
	AddIncome(ctx context.Context, in core.IncomeInput) (core.Entry, error)
	AddExpense(ctx context.Context, in core.ExpenseInput) (core.Entry, error)
	CloseOdometer(ctx context.Context, in core.OdometerInput) (core.Entry, bool, error)
	UpdateIncome(ctx context.Context, id string, in core.IncomeInput) (core.Entry, error)
	UpdateExpense(ctx context.Context, id string, in core.ExpenseInput) (core.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	SettleEntry(ctx context.Context, id string, settled bool) error
	GetEntry(ctx context.Context, id string) (core.Entry, error)
	ListEntries(ctx context.Context, f core.Filter) ([]core.Entry, error)
	Summary(ctx context.Context, f core.Filter) (core.Summary, error)
	DailyStats(ctx context.Context) ([]core.DailyStat, error)
	WeeklyStats(ctx context.Context) ([]core.WeekGroup, error)
	FuelMetrics(ctx context.Context) (core.FuelMetrics, error)
	MaintenanceStatus(ctx context.Context) ([]core.AlertStatus, error)
	Settings(ctx context.Context) (core.Settings, error)
	UpdateSettings(ctx context.Context, cfg core.Settings) error
}

// Timesheet is the work-session surface the handlers need.
type Timesheet interface {
	ClockIn(ctx context.Context, date core.Date, start core.Clock, notes string) (core.Session, error)
	ClockOut(ctx context.Context, date core.Date, end core.Clock, breakMinutes int) (core.Session, error)
	Sessions(ctx context.Context) ([]core.Session, error)
	Timesheet(ctx context.Context) (map[string]int, int, error)
}

type Server struct {
	http.Server
	ledger       Ledger
	timesheet    Timesheet
	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, timesheet Timesheet) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      ledger,
		timesheet:   timesheet,
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /entries/income", s.protected(s.handleCreateIncome))
	mux.HandleFunc("POST /entries/expense", s.protected(s.handleCreateExpense))
	mux.HandleFunc("POST /entries/odometer", s.protected(s.handleCreateOdometer))
	mux.HandleFunc("GET /entries", s.protected(s.handleListEntries))
	mux.HandleFunc("GET /entries/{id}", s.protected(s.handleGetEntry))
	mux.HandleFunc("PUT /entries/{id}", s.protected(s.handleUpdateEntry))
	mux.HandleFunc("DELETE /entries/{id}", s.protected(s.handleDeleteEntry))
	mux.HandleFunc("POST /entries/{id}/settle", s.protected(s.handleSettleEntry))

	mux.HandleFunc("GET /summary", s.protected(s.handleSummary))
	mux.HandleFunc("GET /summary/daily", s.protected(s.handleDailySummary))
	mux.HandleFunc("GET /summary/weekly", s.protected(s.handleWeeklySummary))
	mux.HandleFunc("GET /metrics/fuel", s.protected(s.handleFuelMetrics))
	mux.HandleFunc("GET /maintenance/status", s.protected(s.handleMaintenanceStatus))
	mux.HandleFunc("GET /insights/context", s.protected(s.handleInsightsContext))
	mux.HandleFunc("GET /export/csv", s.protected(s.handleExportCSV))

	mux.HandleFunc("POST /clock/in", s.protected(s.handleClockIn))
	mux.HandleFunc("POST /clock/out", s.protected(s.handleClockOut))
	mux.HandleFunc("GET /timesheet", s.protected(s.handleTimesheet))
	mux.HandleFunc("GET /timesheet/sessions", s.protected(s.handleListSessions))

	mux.HandleFunc("GET /settings", s.protected(s.handleGetSettings))
	mux.HandleFunc("PUT /settings", s.protected(s.handleUpdateSettings))
	mux.HandleFunc("GET /settings/alerts", s.protected(s.handleListAlerts))
	mux.HandleFunc("PUT /settings/alerts", s.protected(s.handleReplaceAlerts))
	mux.HandleFunc("DELETE /settings/alerts/{id}", s.protected(s.handleDeleteAlert))

	return s
}

// protected wraps a handler with security headers, rate limiting and
// request logging.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request",
				"request_id", requestID,
				"client_ip", clientIP,
				"url", r.URL.String())
		}

		// Rate limit writes only; reads are cheap local queries.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
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

// Shutdown stops the server and its background cleanup routines.
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

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

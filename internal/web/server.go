package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/brandswipe/internal/catalog"
	"github.com/vbonduro/brandswipe/internal/domain"
	"github.com/vbonduro/brandswipe/internal/ledger"
	"github.com/vbonduro/brandswipe/internal/mediastore"
	"github.com/vbonduro/brandswipe/internal/session"
)

// Ledger is the vote ledger surface the HTTP layer uses.
type Ledger interface {
	RecordVote(ctx context.Context, sessionID, userName, itemID string, value domain.VoteValue) error
	VoterTally(ctx context.Context, sessionID string) domain.VoterTally
	RankedReport(ctx context.Context, items []domain.Item, limit int) ledger.Report
	WipeVotes(ctx context.Context) error
	VoteCount(ctx context.Context) int
	ExportCSV(ctx context.Context, w io.Writer) error
}

type Options struct {
	// AdminPassword gates the admin routes; empty disables them.
	AdminPassword string
	ReportLimit   int
}

type Server struct {
	ledger   Ledger
	catalog  *catalog.Catalog
	media    mediastore.MediaStore
	sessions *session.Repository
	opts     Options
	mux      *http.ServeMux
	logger   *slog.Logger
}

func NewServer(l Ledger, cat *catalog.Catalog, media mediastore.MediaStore, sessions *session.Repository, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		ledger:   l,
		catalog:  cat,
		media:    media,
		sessions: sessions,
		opts:     opts,
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/deck", s.handleDeck)

	s.mux.HandleFunc("POST /api/sessions", s.handleStartSession)
	s.mux.HandleFunc("GET /api/session", s.handleGetSession)
	s.mux.HandleFunc("DELETE /api/session", s.handleEndSession)
	s.mux.HandleFunc("POST /api/session/skip", s.handleSkip)

	s.mux.HandleFunc("POST /api/votes", s.handleVote)
	s.mux.HandleFunc("GET /api/tally", s.handleTally)
	s.mux.HandleFunc("GET /api/report", s.handleReport)

	s.mux.HandleFunc("GET /api/admin/stats", s.requireAdmin(s.handleAdminStats))
	s.mux.HandleFunc("GET /api/admin/votes.csv", s.requireAdmin(s.handleExportVotes))
	s.mux.HandleFunc("DELETE /api/admin/votes", s.requireAdmin(s.handleWipeVotes))

	s.mux.HandleFunc("GET /media/{key...}", s.handleMedia)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr, "items", s.catalog.Len())
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

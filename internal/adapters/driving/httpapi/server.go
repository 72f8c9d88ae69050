package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Upload rate limits applied per client address to ingest, redaction and
// extraction routes.
const (
	DefaultUploadRate  = 2.0
	DefaultUploadBurst = 10
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 15 * time.Second

// Config configures the HTTP API.
type Config struct {
	CORSOrigins []string

	// Tokens maps API tokens to roles. Empty disables authentication.
	Tokens map[string]domain.Role

	// UploadLimit caps request bodies on upload routes.
	UploadLimit int64

	// UploadRate and UploadBurst limit heavy requests per client.
	UploadRate  float64
	UploadBurst int
}

// ConfigFromSettings derives a Config from server settings.
func ConfigFromSettings(s domain.ServerSettings) Config {
	return Config{
		CORSOrigins: s.CORSOrigins,
		Tokens:      s.Tokens,
		UploadLimit: s.UploadLimit,
		UploadRate:  DefaultUploadRate,
		UploadBurst: DefaultUploadBurst,
	}
}

// Server serves the archive API.
type Server struct {
	ports   *Ports
	cfg     Config
	auth    *Authenticator
	limiter *RateLimiter
	mux     *http.ServeMux
	handler http.Handler
}

// NewServer registers every route on a fresh mux.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if cfg.UploadLimit <= 0 {
		cfg.UploadLimit = domain.DefaultAppSettings().Server.UploadLimit
	}

	s := &Server{
		ports:   ports,
		cfg:     cfg,
		auth:    NewAuthenticator(cfg.Tokens),
		limiter: NewRateLimiter(cfg.UploadRate, cfg.UploadBurst),
		mux:     http.NewServeMux(),
	}
	s.routes()
	s.handler = Chain(
		Recover(),
		RequestID(),
		AccessLog(),
		SecurityHeaders(),
		CORS(cfg.CORSOrigins),
	)(s.mux)
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Mount serves h under pattern behind viewer authentication.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.mux.Handle(pattern, s.read(h.ServeHTTP))
}

// routes registers all API routes, grouped by concern.
func (s *Server) routes() {
	// ── Health ──
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// ── Documents ──
	s.mux.HandleFunc("GET /api/docs", s.read(s.handleListDocs))
	s.mux.HandleFunc("GET /api/docs/{id}", s.read(s.handleGetDoc))
	s.mux.HandleFunc("GET /api/docs/{id}/file", s.read(s.handleDocFile))
	s.mux.HandleFunc("DELETE /api/docs/{id}", s.write(s.handleDeleteDoc))
	s.mux.HandleFunc("POST /api/docs/{id}/reingest", s.write(s.limited(s.handleReingest)))

	// ── Ingest ──
	s.mux.HandleFunc("POST /api/upload", s.write(s.limited(s.upload(s.handleUpload))))

	// ── Search ──
	s.mux.HandleFunc("GET /api/search", s.read(s.handleSearch))
	s.mux.HandleFunc("GET /api/search/semantic", s.read(s.handleSemanticSearch))

	// ── Redaction and export ──
	s.mux.HandleFunc("POST /api/redact", s.write(s.limited(s.upload(s.handleRedactUpload))))
	s.mux.HandleFunc("POST /community-api/redact-bytes", s.write(s.limited(s.upload(s.handleRedactUpload))))
	s.mux.HandleFunc("POST /api/docs/{id}/redact", s.write(s.limited(s.upload(s.handleRedactDoc))))
	s.mux.HandleFunc("POST /api/docs/{id}/extract", s.write(s.limited(s.handleExtract)))
	s.mux.HandleFunc("GET /api/derived/{name}", s.read(s.handleDerived))

	// ── Annotations ──
	s.mux.HandleFunc("GET /api/docs/{id}/tags", s.read(s.handleListTags))
	s.mux.HandleFunc("POST /api/docs/{id}/tags", s.write(s.handleAddTag))
	s.mux.HandleFunc("DELETE /api/docs/{id}/tags/{tag}", s.write(s.handleRemoveTag))
	s.mux.HandleFunc("GET /api/docs/{id}/notes", s.read(s.handleListNotes))
	s.mux.HandleFunc("POST /api/docs/{id}/notes", s.write(s.handleAddNote))
	s.mux.HandleFunc("DELETE /api/notes/{noteID}", s.write(s.handleDeleteNote))
	s.mux.HandleFunc("GET /api/docs/{id}/highlights", s.read(s.handleListHighlights))
	s.mux.HandleFunc("POST /api/docs/{id}/highlights", s.write(s.handleAddHighlight))
	s.mux.HandleFunc("DELETE /api/highlights/{highlightID}", s.write(s.handleDeleteHighlight))
}

// read requires any authenticated identity.
func (s *Server) read(next http.HandlerFunc) http.HandlerFunc {
	return s.authorize(next, false)
}

// write requires an identity whose role permits mutations.
func (s *Server) write(next http.HandlerFunc) http.HandlerFunc {
	return s.authorize(next, true)
}

func (s *Server) authorize(next http.HandlerFunc, mutating bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.auth.Authenticate(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if mutating && !id.Role.CanWrite() {
			writeError(w, fmt.Errorf("%w: role %s cannot modify the archive", domain.ErrForbidden, id.Role))
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return s.limiter.Wrap(next)
}

// upload caps the request body at the configured upload limit.
func (s *Server) upload(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > s.cfg.UploadLimit {
			writeError(w, &http.MaxBytesError{Limit: s.cfg.UploadLimit})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.UploadLimit)
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "archivist"})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http: shutdown: %v", err)
		}
	}()

	logger.Info("http: listening on %s (auth %s)", ln.Addr(), authState(s.auth))
	err := httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func authState(a *Authenticator) string {
	if a.Enabled() {
		return "enabled"
	}
	return "disabled"
}

// Package api provides the REST API for roster sessions, identity resolution
// and swap searches.
package api

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"crewswap/internal/audit"
	"crewswap/internal/identity"
	"crewswap/internal/logger"
	"crewswap/internal/registry"
	"crewswap/internal/roster"
	"crewswap/internal/session"
)

// Server serves the crewswap API. Every client works in its own session.
type Server struct {
	sessions    *session.Store
	audit       audit.Store
	decoders    *registry.Registry
	validate    *validator.Validate
	resolver    identity.Resolver
	yearPrefix  string
	futureOnly  bool
	artifactDir string
	sessionIdle time.Duration
	port        int
	authEnabled bool
	apiKeys     map[string]bool // Simple API key auth (when enabled).
	now         func() time.Time
}

// Config holds configuration for the API server.
type Config struct {
	Port        int
	AuthEnabled bool
	APIKeys     []string // List of valid API keys.
	Threshold   float64
	YearPrefix  string
	FutureOnly  bool
	ArtifactDir string        // empty disables per-session CSV artifacts
	SessionIdle time.Duration // zero keeps sessions until deleted
}

// NewServer creates an API server. A nil audit store discards records.
func NewServer(sessions *session.Store, store audit.Store, decoders *registry.Registry, cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}
	if store == nil {
		store = audit.Nop{}
	}
	if decoders == nil {
		decoders = registry.Default()
	}
	decoders.Sort()

	return &Server{
		sessions:    sessions,
		audit:       store,
		decoders:    decoders,
		validate:    validator.New(),
		resolver:    identity.Resolver{Threshold: cfg.Threshold},
		yearPrefix:  cfg.YearPrefix,
		futureOnly:  cfg.FutureOnly,
		artifactDir: cfg.ArtifactDir,
		sessionIdle: cfg.SessionIdle,
		port:        cfg.Port,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
		now:         time.Now,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  stdlog.New(logger.Writer(), "", 0),
		NoColor: true,
	})

	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for browser access.
	r.Use(corsMiddleware)

	r.Mount("/api/v1", s.Router())

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.sessionIdle > 0 {
		go s.sweep(ctx)
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("API starting", "addr", "http://localhost"+srv.Addr, "auth", s.authEnabled)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// sweep drops idle sessions until ctx is cancelled.
func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.sessionIdle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(s.sessionIdle); n > 0 {
				logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}

// Router returns the configured chi router for embedding in other servers.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	// Health check (no auth required).
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.authEnabled {
			r.Use(s.authMiddleware)
		}

		r.Post("/decode", s.handleDecode)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(s.sessionMiddleware)

			r.Delete("/", s.handleDeleteSession)
			r.Post("/documents", s.handleLoadDocuments)
			r.Delete("/table", s.handleClearTable)
			r.Get("/table.csv", s.handleTableCSV)
			r.Get("/dates", s.handleDates)
			r.Get("/crew", s.handleCrew)
			r.Get("/crew/{alias}", s.handleCrewMember)
			r.Post("/resolve", s.handleResolve)
			r.Post("/search", s.handleSearch)
			r.Post("/search.csv", s.handleSearchCSV)
		})
	})

	return r
}

// dateFilter returns the activity-date column filter for the current time.
func (s *Server) dateFilter() roster.DateFilter {
	f := roster.DateFilter{YearPrefix: s.yearPrefix}
	if s.futureOnly {
		f.After = s.now()
	}
	return f
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API key authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check X-API-Key header first.
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		// Fall back to query parameter (for simple testing).
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}

		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

// sessionMiddleware loads the session named in the URL into the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(ctxKey{}).(*session.Session)
	return sess
}

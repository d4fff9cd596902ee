package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/config"
	"github.com/lazypower/cony/internal/domain"
	"github.com/lazypower/cony/internal/metrics"
	"github.com/lazypower/cony/internal/service/account"
	"github.com/lazypower/cony/internal/service/admin"
	"github.com/lazypower/cony/internal/service/journal"
	"github.com/lazypower/cony/internal/service/roster"
	"github.com/lazypower/cony/internal/store"
	"go.uber.org/zap"
)

// Server is the cony HTTP API server.
type Server struct {
	db      *store.DB
	log     *zap.Logger
	metrics *metrics.Metrics
	router  chi.Router
	version string
	started time.Time

	accounts *account.Service
	journal  *journal.Service
	roster   *roster.Service
	admin    *admin.Service
}

// New wires the services over db and builds the router. Metrics are
// collected unless cfg.Metrics.Disabled.
func New(db *store.DB, cfg *config.Config, logger *zap.Logger, version string) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("server timezone: %w", err)
	}

	s := &Server{
		db:      db,
		log:     logger.Named("http"),
		version: version,
		started: time.Now(),
	}
	if !cfg.Metrics.Disabled {
		s.metrics = metrics.New()
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTTL)
	s.accounts = account.NewService(logger, db, db, db, tokens, cfg.Auth.BcryptCost, account.WithLocation(loc))
	s.journal = journal.NewService(logger, db.Emotions(), db.Thoughts(), db,
		journal.WithLocation(loc), journal.WithCounter(s.metrics))
	s.roster = roster.NewService(logger, db, s.journal)
	s.admin = admin.NewService(logger, db, cfg.Tracker.ActiveWindowDays)

	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Metrics returns the server's collectors, nil when disabled.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.accessLog)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, domain.ErrNotFound)
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		})

		r.Get("/health", s.handleHealth)

		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/signout", s.handleSignOut)
			r.Get("/me", s.handleMe)

			r.With(requireView(domain.ViewResources)).Get("/resources", s.handleResources)
			r.With(requireView(domain.ViewDashboard)).Get("/dashboard", s.handleDashboard)
			r.With(requireView(domain.ViewAnalytics)).Get("/analytics", s.handleAnalytics)

			r.Route("/emotions", func(r chi.Router) {
				r.Use(requireView(domain.ViewEmotions))
				r.Get("/", s.handleListEmotions)
				r.Post("/", s.handleCreateEmotion)
				r.Delete("/{id}", s.handleDeleteEmotion)
			})

			r.Route("/thoughts", func(r chi.Router) {
				r.Use(requireView(domain.ViewThoughts))
				r.Get("/", s.handleListThoughts)
				r.Post("/", s.handleCreateThought)
				r.Delete("/{id}", s.handleDeleteThought)
			})

			r.Route("/patients", func(r chi.Router) {
				r.Use(requireView(domain.ViewPatients))
				r.Get("/", s.handleListPatients)
				r.Get("/{id}", s.handleGetPatient)
				r.Patch("/{id}", s.handleUpdatePatient)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireView(domain.ViewAdmin))
				r.Get("/stats", s.handleAdminStats)
				r.With(requireView(domain.ViewUsers)).Get("/users", s.handleListUsers)
				r.With(requireView(domain.ViewUsers)).Put("/users/{id}/role", s.handleSetRole)
				r.Post("/patients/{id}/assign", s.handleAssign)
				r.Get("/psychologists", s.handleListPsychologists)
				r.Patch("/psychologists/{id}", s.handleUpdatePsychologist)
			})
		})
	})

	r.Handle("/*", spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

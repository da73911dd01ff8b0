// Package fixture is an in-memory implementation of the backend REST surface
// the client consumes. It exists so the SDK can be developed and
// integration-tested without the real backend: real signed tokens, bcrypt
// passwords, the same envelope convention, pagination, and the same
// rejection statuses (409 on duplicate names, 409 on deleting a referenced
// service, structured field errors on invalid payloads).
package fixture

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/telecomplus/contratos/internal/config"
	"github.com/telecomplus/contratos/internal/lib/token"
)

// Server is the fixture backend.
type Server struct {
	storage  *Storage
	maker    *token.Maker
	validate *validator.Validate
	log      *slog.Logger
	httpSrv  *http.Server
}

// NewServer creates a fixture Server from config.
func NewServer(cfg config.Fixture, log *slog.Logger) *Server {
	s := &Server{
		storage:  NewStorage(),
		maker:    token.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		validate: validator.New(),
		log:      log,
	}
	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(cfg.CORSOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Storage exposes the backing state for test seeding.
func (s *Server) Storage() *Storage { return s.storage }

// TokenMaker exposes the signer for test seeding.
func (s *Server) TokenMaker() *token.Maker { return s.maker }

// Router builds the route tree.
func (s *Server) Router(corsOrigins []string) http.Handler {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	limiter := rate.NewLimiter(50, 100)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         3600,
	}).Handler)
	r.Use(rateLimitMiddleware(limiter, s.log))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.maker, s.log))
			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/profile", s.handleProfile)
			r.Put("/auth/profile", s.handleUpdateProfile)
			r.Put("/auth/change-password", s.handleChangePassword)

			r.Get("/contracts", s.handleListContratos)
			r.Get("/contracts/stats", s.handleContratoStats)
			r.Post("/contracts", s.handleCreateContrato)
			r.Get("/contracts/{id}", s.handleGetContrato)
			r.Put("/contracts/{id}", s.handleUpdateContrato)
			r.Delete("/contracts/{id}", s.handleDeleteContrato)

			r.Get("/services", s.handleListServicios)
			r.Post("/services", s.handleCreateServicio)
			r.Get("/services/{id}", s.handleGetServicio)
			r.Put("/services/{id}", s.handleUpdateServicio)
			r.Delete("/services/{id}", s.handleDeleteServicio)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run starts the server and blocks until the context is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("fixture API starting", slog.String("address", s.httpSrv.Addr))
		err := s.httpSrv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.log.Info("shutting down fixture API gracefully")
		return s.httpSrv.Shutdown(timeoutCtx)
	}
}

// Package server expone la pantalla de login como API JSON para un front-end web:
// cada navegador obtiene una sesión de login (cookie) con su propio controller.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellojohn-login/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-login/internal/identity"
	"github.com/dropDatabas3/hellojohn-login/internal/metrics"
	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-login/internal/rate"
)

// Directory consulta la disponibilidad de providers en el backend.
type Directory interface {
	Providers(ctx context.Context, redirectTarget string) ([]identity.ProviderInfo, error)
}

// Config agrupa las dependencias del server.
type Config struct {
	Addr          string
	NewController ControllerFactory
	// Directory es opcional: sin él /login/providers no informa readiness.
	Directory Directory
	Metrics   *metrics.Metrics
	// Limiter es opcional; aplica a los POST de /login.
	Limiter rate.Limiter
	// ClientIP resuelve la IP para logs y rate limit; nil = RemoteAddr.
	ClientIP   *middlewares.ClientIPResolver
	SessionTTL time.Duration

	CookieName   string
	CookieSecure bool
	// ProceedTo se devuelve al front después de un login exitoso.
	ProceedTo string
}

// Server es la superficie HTTP del login.
type Server struct {
	cfg      Config
	sessions *sessionStore
	handler  http.Handler
}

// New valida la configuración y arma el router.
func New(cfg Config) (*Server, error) {
	if cfg.NewController == nil {
		return nil, errors.New("server: controller factory required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 15 * time.Minute
	}
	if strings.TrimSpace(cfg.CookieName) == "" {
		cfg.CookieName = "hjlogin_sid"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8081"
	}

	s := &Server{
		cfg:      cfg,
		sessions: newSessionStore(cfg.SessionTTL, cfg.NewController),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler devuelve el http.Handler con middlewares aplicados.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middlewares.WithRecover(),
		middlewares.WithRequestID(),
		middlewares.WithLogging(s.cfg.ClientIP),
		middlewares.WithSecurityHeaders(),
	)
	if s.cfg.Metrics != nil {
		r.Use(s.cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	limit := middlewares.WithRateLimit(middlewares.RateLimitConfig{
		Limiter: s.cfg.Limiter,
		KeyFunc: s.cfg.ClientIP.RateKey,
	})
	r.Route("/login", func(r chi.Router) {
		r.Use(middlewares.WithNoStore())
		r.Get("/state", s.handleState)
		r.Get("/providers", s.handleProviders)
		r.Post("/reset", s.handleReset)
		r.With(limit).Post("/password", s.handlePassword)
		r.With(limit).Post("/providers/{provider}", s.handleProviderLaunch)
	})
	return r
}

// ListenAndServe sirve hasta que ctx se cancele y luego hace shutdown ordenado.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("login server listening", logger.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.L().Info("login server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

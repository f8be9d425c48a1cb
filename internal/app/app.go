// Package app arma el contenedor de dependencias de hjlogin a partir de la config.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dropDatabas3/hellojohn-login/internal/cache"
	"github.com/dropDatabas3/hellojohn-login/internal/config"
	"github.com/dropDatabas3/hellojohn-login/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-login/internal/http/server"
	"github.com/dropDatabas3/hellojohn-login/internal/identity"
	"github.com/dropDatabas3/hellojohn-login/internal/loginflow"
	"github.com/dropDatabas3/hellojohn-login/internal/metrics"
	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-login/internal/providers"
	"github.com/dropDatabas3/hellojohn-login/internal/providers/github"
	"github.com/dropDatabas3/hellojohn-login/internal/providers/google"
	"github.com/dropDatabas3/hellojohn-login/internal/rate"
)

// Container agrupa las dependencias ya construidas.
type Container struct {
	Config    *config.Config
	Cache     cache.Client
	Identity  *identity.Client
	Providers []providers.Descriptor
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
}

// Option ajusta Build.
type Option func(*options)

type options struct {
	onSession identity.SessionHandler
}

// WithSessionHandler recibe los tokens de cada login exitoso.
func WithSessionHandler(h identity.SessionHandler) Option {
	return func(o *options) { o.onSession = h }
}

// NewProviderRegistry devuelve el catálogo con todos los providers conocidos.
func NewProviderRegistry() *providers.Registry {
	r := providers.NewRegistry()
	google.Register(r)
	github.Register(r)
	return r
}

// Build construye cache, cliente de identidad, catálogo de providers y métricas.
func Build(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	descs, err := NewProviderRegistry().Resolve(cfg.Login.Providers, cfg.Providers)
	if err != nil {
		return nil, fmt.Errorf("app: providers: %w", err)
	}

	c, err := cache.New(ctx, cache.Config{
		Driver:     cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		Password:   cfg.Cache.Redis.Password,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.Cache.DiscoveryTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("app: cache: %w", err)
	}

	idc, err := identity.New(identity.Config{
		BaseURL:      cfg.Backend.BaseURL,
		TenantID:     cfg.Backend.TenantID,
		ClientID:     cfg.Backend.ClientID,
		Timeout:      cfg.Backend.Timeout,
		Cache:        c,
		DiscoveryTTL: cfg.Cache.DiscoveryTTL,
		OnSession:    o.onSession,
		RequestID:    middlewares.GetRequestID,
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("app: identity: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	logger.L().Debug("container built",
		logger.Component("app"),
		logger.TenantID(cfg.Backend.TenantID),
		logger.ClientID(cfg.Backend.ClientID),
		logger.String("cache", cfg.Cache.Kind),
		logger.Int("providers", len(descs)),
	)

	return &Container{
		Config:    cfg,
		Cache:     c,
		Identity:  idc,
		Providers: descs,
		Metrics:   m,
		Registry:  reg,
	}, nil
}

// NewController crea un controller de login (una vista de la pantalla).
func (c *Container) NewController(nav loginflow.Navigator) *loginflow.Controller {
	return loginflow.New(loginflow.Config{
		Backend:      c.Identity,
		Providers:    c.Providers,
		RedirectPath: c.Config.Login.RedirectPath,
		Navigator:    nav,
		Observer:     loginflow.Observers{c.Metrics, loginflow.NewLogObserver(nil)},
	})
}

// Server arma la superficie HTTP con una sesión de login por navegador.
func (c *Container) Server() (*server.Server, error) {
	ips, err := middlewares.NewClientIPResolver(c.Config.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("app: trusted proxies: %w", err)
	}
	cfg := server.Config{
		Addr:          c.Config.Server.Addr,
		NewController: c.NewController,
		Directory:     c.Identity,
		SessionTTL:    c.Config.Login.SessionTTL,
		CookieName:    c.Config.Server.CookieName,
		CookieSecure:  c.Config.Server.CookieSecure,
		ProceedTo:     c.Config.Login.ProceedTo,
		ClientIP:      ips,
	}
	if c.Config.Metrics.Enabled {
		cfg.Metrics = c.Metrics
	}
	if c.Config.Rate.Enabled {
		cfg.Limiter = rate.NewFixedWindow(c.Cache, "rl:", c.Config.Rate.Limit, c.Config.Rate.Window)
	}
	return server.New(cfg)
}

// Close libera el cache.
func (c *Container) Close() error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

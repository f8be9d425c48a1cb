// Package config carga la configuración de hjlogin: defaults, luego el YAML
// (opcional) y por último overrides de entorno HJLOGIN_*.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/hellojohn-login/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-login/internal/providers"
)

type Config struct {
	App struct {
		// dev | prod
		Env      string `yaml:"env" env:"HJLOGIN_ENV"`
		LogLevel string `yaml:"log_level" env:"HJLOGIN_LOG_LEVEL"`
	} `yaml:"app"`

	// Backend de identidad (HelloJohn v2).
	Backend struct {
		BaseURL  string        `yaml:"base_url" env:"HJLOGIN_BACKEND_URL"`
		TenantID string        `yaml:"tenant_id" env:"HJLOGIN_TENANT_ID"`
		ClientID string        `yaml:"client_id" env:"HJLOGIN_CLIENT_ID"`
		Timeout  time.Duration `yaml:"timeout" env:"HJLOGIN_HTTP_TIMEOUT"`
	} `yaml:"backend"`

	Login struct {
		// Path que se agrega al origin de la página para el redirect OAuth.
		RedirectPath string   `yaml:"redirect_path" env:"HJLOGIN_REDIRECT_PATH"`
		Providers    []string `yaml:"providers" env:"HJLOGIN_PROVIDERS" envSeparator:","`
		// ProceedTo es a dónde navega la UI después de un login exitoso.
		ProceedTo  string        `yaml:"proceed_to" env:"HJLOGIN_PROCEED_TO"`
		SessionTTL time.Duration `yaml:"session_ttl" env:"HJLOGIN_SESSION_TTL"`
		// PageOrigin lo usa el CLI, que no tiene un request del cual derivarlo.
		PageOrigin string `yaml:"page_origin" env:"HJLOGIN_PAGE_ORIGIN"`
	} `yaml:"login"`

	// Overrides de display por provider (google, github, ...).
	Providers map[string]providers.ProviderConfig `yaml:"providers"`

	Server struct {
		Addr         string `yaml:"addr" env:"HJLOGIN_ADDR"`
		CookieName   string `yaml:"cookie_name" env:"HJLOGIN_COOKIE_NAME"`
		CookieSecure bool   `yaml:"cookie_secure" env:"HJLOGIN_COOKIE_SECURE"`
		// TrustedProxies: IPs o CIDRs cuyo X-Forwarded-For se respeta. Vacío = solo RemoteAddr.
		TrustedProxies []string `yaml:"trusted_proxies" env:"HJLOGIN_TRUSTED_PROXIES" envSeparator:","`
	} `yaml:"server"`

	Cache struct {
		Kind         string        `yaml:"kind" env:"HJLOGIN_CACHE_KIND"`
		DiscoveryTTL time.Duration `yaml:"discovery_ttl" env:"HJLOGIN_DISCOVERY_TTL"`
		Redis        struct {
			Addr     string `yaml:"addr" env:"HJLOGIN_REDIS_ADDR"`
			Password string `yaml:"password" env:"HJLOGIN_REDIS_PASSWORD"`
			DB       int    `yaml:"db" env:"HJLOGIN_REDIS_DB"`
			Prefix   string `yaml:"prefix" env:"HJLOGIN_REDIS_PREFIX"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	// Rate limit de POST /login/* por IP.
	Rate struct {
		Enabled bool          `yaml:"enabled" env:"HJLOGIN_RATE_ENABLED"`
		Limit   int           `yaml:"limit" env:"HJLOGIN_RATE_LIMIT"`
		Window  time.Duration `yaml:"window" env:"HJLOGIN_RATE_WINDOW"`
	} `yaml:"rate"`

	Metrics struct {
		Enabled bool `yaml:"enabled" env:"HJLOGIN_METRICS_ENABLED"`
	} `yaml:"metrics"`
}

// Default devuelve la configuración base.
func Default() *Config {
	var c Config
	c.App.Env = "dev"
	c.App.LogLevel = "info"
	c.Backend.Timeout = 15 * time.Second
	c.Login.RedirectPath = "/"
	c.Login.Providers = []string{"google", "github"}
	c.Login.ProceedTo = "/"
	c.Login.SessionTTL = 15 * time.Minute
	c.Login.PageOrigin = "http://localhost:3000"
	c.Server.Addr = ":8081"
	c.Server.CookieName = "hjlogin_sid"
	c.Cache.Kind = "memory"
	c.Cache.DiscoveryTTL = 2 * time.Minute
	c.Cache.Redis.Prefix = "hjlogin:"
	c.Rate.Enabled = true
	c.Rate.Limit = 10
	c.Rate.Window = time.Minute
	c.Metrics.Enabled = true
	return &c
}

// Load arma la configuración. path vacío o inexistente => solo defaults + entorno.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) normalize() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	c.Login.PageOrigin = strings.TrimRight(strings.TrimSpace(c.Login.PageOrigin), "/")
	c.Cache.Kind = strings.ToLower(strings.TrimSpace(c.Cache.Kind))

	proxies := c.Server.TrustedProxies[:0]
	for _, p := range c.Server.TrustedProxies {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	c.Server.TrustedProxies = proxies

	names := c.Login.Providers[:0]
	seen := make(map[string]struct{}, len(c.Login.Providers))
	for _, n := range c.Login.Providers {
		n = strings.ToLower(strings.TrimSpace(n))
		if _, dup := seen[n]; n == "" || dup {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	c.Login.Providers = names
}

// Validate verifica los valores críticos.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.Backend.BaseURL); c.Backend.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url: invalid %q", c.Backend.BaseURL))
	}
	if c.Backend.TenantID == "" {
		errs = append(errs, errors.New("backend.tenant_id: required"))
	}
	if c.Backend.ClientID == "" {
		errs = append(errs, errors.New("backend.client_id: required"))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout: must be > 0"))
	}
	if !strings.HasPrefix(c.Login.RedirectPath, "/") {
		errs = append(errs, fmt.Errorf("login.redirect_path: must start with / (got %q)", c.Login.RedirectPath))
	}
	if c.Login.SessionTTL <= 0 {
		errs = append(errs, errors.New("login.session_ttl: must be > 0"))
	}
	for _, p := range c.Server.TrustedProxies {
		if _, err := middlewares.ParseTrustedProxy(p); err != nil {
			errs = append(errs, fmt.Errorf("server.trusted_proxies: %w", err))
		}
	}
	if c.Rate.Enabled && (c.Rate.Limit <= 0 || c.Rate.Window <= 0) {
		errs = append(errs, errors.New("rate: limit and window must be > 0"))
	}
	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr: required for kind=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.kind: unknown %q", c.Cache.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

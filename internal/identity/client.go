// Package identity es el cliente HTTP del backend de identidad (API v2 de HelloJohn).
//
// Implementa loginflow.Backend:
//   - SignInWithCredentials => POST /v2/auth/login
//   - BeginOAuth            => GET  /v2/auth/social/{provider}/start (sin seguir el 302)
//
// y el discovery de providers (GET /v2/auth/providers) cacheado.
//
// Los errores que el backend reporta (4xx con {code, message}) se devuelven como
// *APIError; todo lo demás (red, 5xx, JSON roto) como error común.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/hellojohn-login/internal/cache"
	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultDiscoveryTTL = 2 * time.Minute
	maxResponseBytes    = 1 << 20
)

// Config configura el cliente.
type Config struct {
	BaseURL  string
	TenantID string
	ClientID string

	// Timeout aplica si HTTPClient es nil. Default 15s.
	Timeout    time.Duration
	HTTPClient *http.Client

	// Cache para el discovery de providers. nil => sin cache.
	Cache        cache.Client
	DiscoveryTTL time.Duration

	// OnSession recibe los tokens de un login exitoso.
	OnSession SessionHandler

	// RequestID extrae el request id a propagar (X-Request-ID). nil => uno nuevo por llamada.
	RequestID func(ctx context.Context) string
}

// Client habla con el backend de identidad. Es seguro para uso concurrente.
type Client struct {
	base     *url.URL
	tenantID string
	clientID string

	http       *http.Client
	noRedirect *http.Client

	cache        cache.Client
	discoveryTTL time.Duration
	sf           singleflight.Group

	onSession SessionHandler
	requestID func(ctx context.Context) string
}

// New valida la configuración y crea el cliente.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("identity: invalid base url %q", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.TenantID) == "" {
		return nil, fmt.Errorf("identity: tenant id required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("identity: client id required")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	// Copia que no sigue redirects: el Location del start social ES el resultado.
	nr := *hc
	nr.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	ttl := cfg.DiscoveryTTL
	if ttl <= 0 {
		ttl = defaultDiscoveryTTL
	}

	return &Client{
		base:         base,
		tenantID:     cfg.TenantID,
		clientID:     cfg.ClientID,
		http:         hc,
		noRedirect:   &nr,
		cache:        cfg.Cache,
		discoveryTTL: ttl,
		onSession:    cfg.OnSession,
		requestID:    cfg.RequestID,
	}, nil
}

// Login valida email/password contra el backend y devuelve la sesión emitida.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.From(ctx).With(logger.Layer("client"), logger.Op("identity.Login"))

	body, err := json.Marshal(loginRequest{
		TenantID: c.tenantID,
		ClientID: c.clientID,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("identity: encode login: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("/v2/auth/login", nil), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		err := decodeError(resp)
		log.Debug("login rejected", logger.Status(resp.StatusCode), logger.Err(err))
		return nil, err
	}

	var out loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("identity: decode login response: %w", err)
	}
	if out.MFARequired {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Code:    CodeMFARequired,
			Message: "Two-factor verification is required to finish signing in.",
		}
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("identity: login response without access token")
	}

	s := newSession(out)
	log.Debug("login accepted", logger.Subject(s.Subject))
	return s, nil
}

// SignInWithCredentials implementa loginflow.CredentialBackend.
func (c *Client) SignInWithCredentials(ctx context.Context, email, password string) error {
	s, err := c.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if c.onSession != nil {
		c.onSession(ctx, s)
	}
	return nil
}

// BeginOAuth implementa loginflow.OAuthBackend: pide al backend el arranque del
// flujo social y devuelve la URL de autorización del provider (header Location).
func (c *Client) BeginOAuth(ctx context.Context, providerID, redirectTarget string) (string, error) {
	q := url.Values{}
	q.Set("tenant", c.tenantID)
	q.Set("client_id", c.clientID)
	if redirectTarget != "" {
		q.Set("redirect_uri", redirectTarget)
	}
	target := c.endpoint("/v2/auth/social/"+url.PathEscape(providerID)+"/start", q)

	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity: social start %s: %w", providerID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		loc, err := resp.Location()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMissingLocation, err)
		}
		return loc.String(), nil
	case resp.StatusCode/100 == 2:
		return "", ErrMissingLocation
	default:
		return "", decodeError(resp)
	}
}

func (c *Client) endpoint(p string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + p
	u.RawPath = ""
	u.RawQuery = ""
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	rid := ""
	if c.requestID != nil {
		rid = c.requestID(ctx)
	}
	if rid == "" {
		rid = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", rid)
	return req, nil
}

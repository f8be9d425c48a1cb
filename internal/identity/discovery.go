package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dropDatabas3/hellojohn-login/internal/cache"
	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
)

// Providers devuelve el discovery de providers sociales para redirectTarget.
// El resultado se cachea (discoveryTTL) y las consultas concurrentes con la misma
// key comparten una sola llamada al backend.
func (c *Client) Providers(ctx context.Context, redirectTarget string) ([]ProviderInfo, error) {
	log := logger.From(ctx).With(logger.Layer("client"), logger.Op("identity.Providers"))
	key := c.discoveryKey(redirectTarget)

	if c.cache != nil {
		raw, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			var out providersResponse
			if jerr := json.Unmarshal([]byte(raw), &out); jerr == nil {
				return out.Providers, nil
			}
			log.Warn("discarding corrupt discovery entry", logger.String("key", key))
		case !cache.IsNotFound(err):
			log.Warn("discovery cache read failed", logger.Err(err))
		}
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		return c.fetchProviders(ctx, redirectTarget, key)
	})
	if err != nil {
		return nil, err
	}
	return v.([]ProviderInfo), nil
}

// InvalidateProviders borra la entrada cacheada de redirectTarget.
func (c *Client) InvalidateProviders(ctx context.Context, redirectTarget string) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, c.discoveryKey(redirectTarget))
}

func (c *Client) fetchProviders(ctx context.Context, redirectTarget, key string) ([]ProviderInfo, error) {
	q := url.Values{}
	q.Set("tenant_id", c.tenantID)
	q.Set("client_id", c.clientID)
	if redirectTarget != "" {
		q.Set("redirect_uri", redirectTarget)
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("/v2/auth/providers", q), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: providers request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, decodeError(resp)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("identity: read providers response: %w", err)
	}
	var out providersResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("identity: decode providers response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, string(raw), c.discoveryTTL); err != nil {
			logger.From(ctx).Warn("discovery cache write failed", logger.Op("identity.Providers"), logger.Err(err))
		}
	}
	return out.Providers, nil
}

func (c *Client) discoveryKey(redirectTarget string) string {
	return strings.Join([]string{"providers", c.tenantID, c.clientID, redirectTarget}, "|")
}

// FindProvider busca un provider por nombre (case-insensitive).
func FindProvider(list []ProviderInfo, name string) (ProviderInfo, bool) {
	for _, p := range list {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return ProviderInfo{}, false
}

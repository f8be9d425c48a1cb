package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hjlogin.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	p := writeYAML(t, `
app:
  env: prod
backend:
  base_url: http://idp.local:8080/
  tenant_id: acme
  client_id: web
  timeout: 5s
login:
  providers: [Google, " github ", "", GITHUB]
providers:
  github:
    display_name: GitHub Enterprise
cache:
  kind: REDIS
  redis:
    addr: 127.0.0.1:6379
`)
	t.Setenv("HJLOGIN_CLIENT_ID", "web-env")
	t.Setenv("HJLOGIN_SESSION_TTL", "30m")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "prod", c.App.Env)
	require.Equal(t, "info", c.App.LogLevel)
	require.Equal(t, "http://idp.local:8080", c.Backend.BaseURL)
	require.Equal(t, "web-env", c.Backend.ClientID)
	require.Equal(t, 5*time.Second, c.Backend.Timeout)
	require.Equal(t, 30*time.Minute, c.Login.SessionTTL)
	require.Equal(t, []string{"google", "github"}, c.Login.Providers)
	require.Equal(t, "GitHub Enterprise", c.Providers["github"].DisplayName)
	require.Equal(t, "redis", c.Cache.Kind)
	require.Equal(t, "hjlogin_sid", c.Server.CookieName)
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("HJLOGIN_BACKEND_URL", "https://auth.example.com")
	t.Setenv("HJLOGIN_TENANT_ID", "acme")
	t.Setenv("HJLOGIN_CLIENT_ID", "web")
	t.Setenv("HJLOGIN_PROVIDERS", "github")

	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, []string{"github"}, c.Login.Providers)
	require.Equal(t, "/", c.Login.RedirectPath)
}

func TestLoad_Invalid(t *testing.T) {
	p := writeYAML(t, `
backend:
  base_url: idp
login:
  redirect_path: callback
cache:
  kind: memcached
`)
	_, err := Load(p)
	require.Error(t, err)
	require.Contains(t, err.Error(), "backend.base_url")
	require.Contains(t, err.Error(), "backend.tenant_id")
	require.Contains(t, err.Error(), "login.redirect_path")
	require.Contains(t, err.Error(), "cache.kind")
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("HJLOGIN_HTTP_TIMEOUT", "soon")
	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse env")
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("HJLOGIN_BACKEND_URL", "https://idp.example.com")
	t.Setenv("HJLOGIN_TENANT_ID", "acme")
	t.Setenv("HJLOGIN_CLIENT_ID", "web")
	t.Setenv("HJLOGIN_TRUSTED_PROXIES", "10.0.0.0/8, ,192.0.2.1")

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, c.Server.TrustedProxies)

	t.Setenv("HJLOGIN_TRUSTED_PROXIES", "lb.internal")
	_, err = Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "server.trusted_proxies")
}

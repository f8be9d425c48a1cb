package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-login/internal/config"
	"github.com/dropDatabas3/hellojohn-login/internal/loginflow"
)

func testConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Backend.BaseURL = backendURL
	cfg.Backend.TenantID = "acme"
	cfg.Backend.ClientID = "web"
	cfg.Backend.Timeout = 2 * time.Second
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestBuild_WiresControllerToBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/auth/login":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"INVALID_CREDENTIALS","message":"Invalid email or password"}`))
		case "/v2/auth/social/github/start":
			http.Redirect(w, r, "https://github.com/login/oauth/authorize?state=x", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	c, err := Build(context.Background(), testConfig(t, backend.URL))
	require.NoError(t, err)
	defer c.Close()

	require.Len(t, c.Providers, 2)
	require.Equal(t, "google", c.Providers[0].ID)

	ctrl := c.NewController(nil)
	out := ctrl.Credentials().Submit(context.Background(), loginflow.Form{Email: "a@b.c", Password: "bad"})
	require.Equal(t, loginflow.OutcomeFailed, out)
	require.Equal(t, "Invalid email or password", ctrl.Snapshot().LastError)

	l, ok := ctrl.Launcher("github")
	require.True(t, ok)
	red, out := l.Launch(context.Background(), "http://localhost:3000")
	require.Equal(t, loginflow.OutcomeRedirected, out)
	require.Equal(t, "https://github.com/login/oauth/authorize?state=x", red.URL)

	srv, err := c.Server()
	require.NoError(t, err)
	require.NotNil(t, srv.Handler())
}

func TestBuild_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Cache.Kind = "redis"
	cfg.Cache.Redis.Addr = mr.Addr()

	c, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Cache.Ping(context.Background()))
}

func TestBuild_UnknownProvider(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Login.Providers = []string{"myspace"}

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
}

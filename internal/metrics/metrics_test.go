package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-login/internal/loginflow"
)

func TestObserverCountsTransitions(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	coord := loginflow.NewCoordinator(loginflow.WithObserver(m))
	google := loginflow.ProviderOrigin("google")

	_, err = coord.TryStart(loginflow.OriginCredential)
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.inflight))

	_, err = coord.TryStart(google)
	require.ErrorIs(t, err, loginflow.ErrAlreadyInFlight)

	require.NoError(t, coord.ReportFailure(loginflow.OriginCredential, "Invalid email or password"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.admitted.WithLabelValues("password")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("provider:google")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.resolved.WithLabelValues("password", "failed")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.inflight))

	_, err = coord.TryStart(google)
	require.NoError(t, err)
	require.True(t, coord.Abandon())
	require.Equal(t, 0.0, testutil.ToFloat64(m.inflight))
	require.Equal(t, 1.0, testutil.ToFloat64(m.abandoned.WithLabelValues("provider:google")))
}

func TestNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg)
	require.NoError(t, err)
	b, err := New(reg)
	require.NoError(t, err)

	a.rejected.WithLabelValues("password").Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(b.rejected.WithLabelValues("password")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Post("/login/providers/{provider}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	r.Handle("/metrics", m.Handler())

	for _, p := range []string{"google", "github"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login/providers/"+p, nil))
		require.Equal(t, http.StatusConflict, rr.Code)
	}
	require.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/login/providers/{provider}", "409")))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	require.True(t, strings.Contains(string(body), "login_attempts_inflight"))
}

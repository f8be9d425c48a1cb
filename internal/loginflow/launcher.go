package loginflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-login/internal/providers"
)

// OAuthBackend asks the identity backend for a provider authorization URL.
type OAuthBackend interface {
	BeginOAuth(ctx context.Context, providerID, redirectTarget string) (string, error)
}

// Redirect is where the user agent must go next.
type Redirect struct {
	Provider string `json:"provider"`
	URL      string `json:"redirect_url"`
}

var errEmptyAuthorizationURL = errors.New("loginflow: backend returned an empty authorization url")

// ProviderLauncher begins the OAuth handshake with one provider. There is a single
// implementation; instances differ only by their Descriptor.
type ProviderLauncher struct {
	coord        *Coordinator
	backend      OAuthBackend
	provider     providers.Descriptor
	origin       Origin
	redirectPath string
}

// NewProviderLauncher creates the launcher of one provider. redirectPath is joined to
// the page origin at launch time; "" means "/".
func NewProviderLauncher(coord *Coordinator, backend OAuthBackend, provider providers.Descriptor, redirectPath string) *ProviderLauncher {
	return &ProviderLauncher{
		coord:        coord,
		backend:      backend,
		provider:     provider,
		origin:       ProviderOrigin(provider.ID),
		redirectPath: normalizePath(redirectPath),
	}
}

// Provider returns the display metadata of the launcher.
func (l *ProviderLauncher) Provider() providers.Descriptor { return l.provider }

// Origin returns the coordinator origin of the launcher.
func (l *ProviderLauncher) Origin() Origin { return l.origin }

// RedirectTarget is the post-redirect URL for a page served from pageOrigin.
func (l *ProviderLauncher) RedirectTarget(pageOrigin string) string {
	return strings.TrimRight(strings.TrimSpace(pageOrigin), "/") + l.redirectPath
}

// Launch requests the authorization URL. On OutcomeRedirected the attempt stays in
// flight: the caller navigates away and drops the whole controller. On failure the
// gate is released so the user can retry this or another provider.
func (l *ProviderLauncher) Launch(ctx context.Context, pageOrigin string) (Redirect, Outcome) {
	log := logger.From(ctx).With(
		logger.Op("ProviderLauncher.Launch"),
		logger.Origin(l.origin.String()),
		logger.Provider(l.provider.ID),
	)

	attempt, err := l.coord.TryStart(l.origin)
	if err != nil {
		log.Debug("launch ignored", logger.Err(err))
		return Redirect{}, OutcomeRejected
	}
	log = log.With(logger.AttemptID(attempt.ID.String()))

	target := l.RedirectTarget(pageOrigin)
	authURL, err := l.begin(ctx, target)
	if err == nil && strings.TrimSpace(authURL) == "" {
		err = errEmptyAuthorizationURL
	}
	if err != nil {
		kind, msg := classify(err, KindProviderHandshake, ProviderFallbackMessage)
		log.Warn("provider handshake failed", logger.String("kind", kind.String()), logger.Err(err))
		if rerr := l.coord.ReportFailure(l.origin, msg); rerr != nil {
			log.Error("report failure refused", logger.Err(rerr))
		}
		return Redirect{}, OutcomeFailed
	}

	log.Info("redirecting to provider", logger.String("redirect_target", target))
	return Redirect{Provider: l.provider.ID, URL: authURL}, OutcomeRedirected
}

func (l *ProviderLauncher) begin(ctx context.Context, target string) (u string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("loginflow: oauth backend panic: %v", rec)
		}
	}()
	return l.backend.BeginOAuth(ctx, l.provider.ID, target)
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

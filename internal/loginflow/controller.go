package loginflow

import (
	"github.com/dropDatabas3/hellojohn-login/internal/providers"
)

// Backend is everything a Controller needs from the identity backend.
type Backend interface {
	CredentialBackend
	OAuthBackend
}

// Config wires a Controller.
type Config struct {
	Backend   Backend
	Providers []providers.Descriptor
	// RedirectPath is appended to the page origin to build the OAuth redirect target.
	RedirectPath string
	Navigator    Navigator
	Observer     Observer
}

// Controller is one login surface: a coordinator shared by the credential submitter
// and one launcher per provider. It lives as long as one page view / CLI run.
type Controller struct {
	coord       *Coordinator
	credentials *CredentialSubmitter
	launchers   []*ProviderLauncher
	byID        map[string]*ProviderLauncher
}

// New builds a Controller. Providers keep the order they were given in.
func New(cfg Config) *Controller {
	coord := NewCoordinator(WithNavigator(cfg.Navigator), WithObserver(cfg.Observer))
	c := &Controller{
		coord:       coord,
		credentials: NewCredentialSubmitter(coord, cfg.Backend),
		byID:        make(map[string]*ProviderLauncher, len(cfg.Providers)),
	}
	for _, p := range cfg.Providers {
		origin := ProviderOrigin(p.ID)
		if origin == OriginNone {
			continue
		}
		if _, dup := c.byID[origin.Provider()]; dup {
			continue
		}
		l := NewProviderLauncher(coord, cfg.Backend, p, cfg.RedirectPath)
		c.launchers = append(c.launchers, l)
		c.byID[origin.Provider()] = l
	}
	return c
}

func (c *Controller) Coordinator() *Coordinator         { return c.coord }
func (c *Controller) Credentials() *CredentialSubmitter { return c.credentials }
func (c *Controller) Launchers() []*ProviderLauncher    { return c.launchers }
func (c *Controller) Snapshot() FlowState               { return c.coord.Snapshot() }

// Abandon drops the in-flight attempt, if any. Call it when the controller is
// discarded without the attempt being resolved.
func (c *Controller) Abandon() bool { return c.coord.Abandon() }

// Launcher returns the launcher of a provider id.
func (c *Controller) Launcher(providerID string) (*ProviderLauncher, bool) {
	l, ok := c.byID[ProviderOrigin(providerID).Provider()]
	return l, ok
}

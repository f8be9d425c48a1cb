// Package providers defines the catalog of external identity providers a login
// surface can launch (Google, GitHub, ...).
//
// A provider here is display metadata plus the id the identity backend knows it by.
// The OAuth handshake itself runs on the backend; the login flow only asks it for an
// authorization URL. Each provider lives in its own sub-package and registers a
// Factory, so adding one does not touch the launcher.
package providers

import (
	"errors"
	"strings"
)

// Descriptor is the capability a launcher is parameterized by.
type Descriptor struct {
	// ID is the provider name on the backend (path segment of /v2/auth/social/{provider}/start).
	ID string `json:"id"`
	// DisplayName is the label shown on the button.
	DisplayName string `json:"display_name"`
	// Icon is an asset key the presentation layer resolves (e.g. "google").
	Icon string `json:"icon"`
}

// Validate checks the descriptor is usable by a launcher.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("providers: empty id")
	}
	if strings.TrimSpace(d.DisplayName) == "" {
		return errors.New("providers: empty display name")
	}
	return nil
}

// ProviderConfig overrides the defaults a factory ships with.
type ProviderConfig struct {
	DisplayName string `yaml:"display_name"`
	Icon        string `yaml:"icon"`
}

// Apply returns d with non-empty overrides from cfg.
func (cfg ProviderConfig) Apply(d Descriptor) Descriptor {
	if v := strings.TrimSpace(cfg.DisplayName); v != "" {
		d.DisplayName = v
	}
	if v := strings.TrimSpace(cfg.Icon); v != "" {
		d.Icon = v
	}
	return d
}

// Package google registers the Google provider.
package google

import "github.com/dropDatabas3/hellojohn-login/internal/providers"

const ProviderName = "google"

// Factory returns the Google descriptor.
func Factory(cfg providers.ProviderConfig) (providers.Descriptor, error) {
	return cfg.Apply(providers.Descriptor{
		ID:          ProviderName,
		DisplayName: "Google",
		Icon:        "google",
	}), nil
}

// Register adds the Google factory to r.
func Register(r *providers.Registry) { r.RegisterFactory(ProviderName, Factory) }

// Package github registers the GitHub provider.
package github

import "github.com/dropDatabas3/hellojohn-login/internal/providers"

const ProviderName = "github"

// Factory returns the GitHub descriptor.
func Factory(cfg providers.ProviderConfig) (providers.Descriptor, error) {
	return cfg.Apply(providers.Descriptor{
		ID:          ProviderName,
		DisplayName: "GitHub",
		Icon:        "github",
	}), nil
}

// Register adds the GitHub factory to r.
func Register(r *providers.Registry) { r.RegisterFactory(ProviderName, Factory) }

package llm

import "context"

// UnconfiguredProvider stands in for a provider whose API key is missing.
// It never makes a request; every Generate fails with ConfigurationMissing.
type UnconfiguredProvider struct {
	provider ProviderType
	model    string
}

// NewUnconfiguredProvider creates a placeholder for providerType.
func NewUnconfiguredProvider(providerType ProviderType, model string) *UnconfiguredProvider {
	if model == "" {
		model = providerType.DefaultModel()
	}
	return &UnconfiguredProvider{provider: providerType, model: model}
}

// Name returns the provider name.
func (p *UnconfiguredProvider) Name() string {
	return p.provider.String()
}

// Model returns the configured model.
func (p *UnconfiguredProvider) Model() string {
	return p.model
}

// Generate always fails with ConfigurationMissing.
func (p *UnconfiguredProvider) Generate(context.Context, string) (Response, error) {
	return Response{}, missingKey(p.Name(), p.provider.EnvVar())
}

var _ Provider = (*UnconfiguredProvider)(nil)

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabasiva/greport/internal/hostclient"
	"github.com/prabasiva/greport/pkg/config"
)

func noopClientFactory(hostclient.Credential) *hostclient.Client { return nil }

func TestResolvePrefersOrganizationEntry(t *testing.T) {
	cfg := &config.Config{
		GitHub: config.GitHubConfig{Token: "default-token", BaseURL: "https://api.github.com", WebURL: "https://github.com"},
		Organizations: []config.OrganizationConfig{
			{Name: "Acme", Token: "acme-token", BaseURL: "https://ghe.acme.internal/api/v3"},
		},
	}
	reg := New(cfg, nil, nil, noopClientFactory)

	resolved, err := reg.Resolve(context.Background(), "acme") // case-insensitive
	require.NoError(t, err)
	assert.Equal(t, "acme-token", resolved.Credential.Token)
	assert.Equal(t, "https://ghe.acme.internal/api/v3", resolved.Credential.BaseURL)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	cfg := &config.Config{
		GitHub: config.GitHubConfig{Token: "default-token", BaseURL: "https://api.github.com"},
	}
	reg := New(cfg, nil, nil, noopClientFactory)

	resolved, err := reg.Resolve(context.Background(), "unlisted")
	require.NoError(t, err)
	assert.Equal(t, "default-token", resolved.Credential.Token)
}

func TestResolveNoCredential(t *testing.T) {
	cfg := &config.Config{}
	reg := New(cfg, nil, nil, noopClientFactory)

	_, err := reg.Resolve(context.Background(), "unlisted")
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestOrganizations(t *testing.T) {
	cfg := &config.Config{
		Organizations: []config.OrganizationConfig{
			{Name: "Acme"}, {Name: "Widgets"},
		},
	}
	reg := New(cfg, nil, nil, noopClientFactory)

	names := reg.Organizations()
	assert.ElementsMatch(t, []string{"Acme", "Widgets"}, names)
}

func TestValidateSkipsEmptyDefaultToken(t *testing.T) {
	cfg := &config.Config{}
	reg := New(cfg, nil, nil, noopClientFactory)

	results := reg.Validate(context.Background())
	assert.Empty(t, results)
}

// Package registry is the Credential Registry (spec §4.1): given a
// repository owner, resolve the credential and endpoints the Host Client
// should use, and (when asked) contact the host's identity endpoint to
// classify each configured credential as valid, invalid, or unreachable.
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prabasiva/greport/internal/hostclient"
	"github.com/prabasiva/greport/pkg/config"
)

// validationTTL bounds how long a Validate() outcome is reused from cache
// before the registry re-contacts the host's identity endpoint (§4.1
// default: 60s).
const validationTTL = 60 * time.Second

// Resolved is the (credential, base_url, web_url) triple the registry
// returns for an owner (§4.1 Contract).
type Resolved struct {
	Credential hostclient.Credential
	WebURL     string
}

// SecretResolver fetches a credential's token from an external secret
// store (optional; §4.1's vault_secret_name is resolved through this).
// Organizations without a VaultSecretName never call it.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, name string) (string, error)
}

// Status is the classification validate() assigns a configured credential.
type Status string

const (
	StatusValid       Status = "valid"
	StatusInvalid     Status = "invalid"
	StatusUnreachable Status = "unreachable"
)

// Validation is one entry of validate()'s report.
type Validation struct {
	Organization string
	Status       Status
	Login        string // the viewer login, when Status == StatusValid
}

// Registry resolves credentials by owner with the precedence order from
// §4.1: explicit per-organization entries, then the single default
// credential. Organization name matching is case-insensitive.
type Registry struct {
	defaultCred hostclient.Credential
	defaultWeb  string
	orgs        map[string]config.OrganizationConfig // lower-cased name -> entry
	secrets     SecretResolver
	cache       ValidationCache

	mu        sync.Mutex
	clients   map[string]*hostclient.Client // credential ID -> client, for validate()
	newClient func(hostclient.Credential) *hostclient.Client
}

// New builds a Registry from loaded configuration. newClient constructs a
// hostclient.Client for a credential (injected so tests can substitute a
// fake without a real rate limiter/logger). cache may be nil, in which case
// Validate never reuses a prior outcome; NewMemoryCache is the usual
// default, NewRedisCache the multi-instance alternative.
func New(cfg *config.Config, secrets SecretResolver, cache ValidationCache, newClient func(hostclient.Credential) *hostclient.Client) *Registry {
	orgs := make(map[string]config.OrganizationConfig, len(cfg.Organizations))
	for _, org := range cfg.Organizations {
		orgs[strings.ToLower(org.Name)] = org
	}
	return &Registry{
		defaultCred: hostclient.Credential{ID: "default", Token: cfg.GitHub.Token, BaseURL: cfg.GitHub.BaseURL},
		defaultWeb:  cfg.GitHub.WebURL,
		orgs:        orgs,
		secrets:     secrets,
		cache:       cache,
		newClient:   newClient,
		clients:     make(map[string]*hostclient.Client),
	}
}

// ErrNoCredential is returned when an owner matches no organization entry
// and no default credential is configured.
var ErrNoCredential = &noCredentialError{}

type noCredentialError struct{}

func (*noCredentialError) Error() string { return "no credential configured for owner" }

// Resolve returns the (credential, base_url, web_url) triple for owner
// (§4.1 Contract), preferring an explicit organization entry over the
// default credential.
func (r *Registry) Resolve(ctx context.Context, owner string) (Resolved, error) {
	if org, ok := r.orgs[strings.ToLower(owner)]; ok {
		token := org.Token
		if token == "" && org.VaultSecretName != "" && r.secrets != nil {
			resolved, err := r.secrets.ResolveSecret(ctx, org.VaultSecretName)
			if err != nil {
				return Resolved{}, err
			}
			token = resolved
		}
		baseURL := org.BaseURL
		if baseURL == "" {
			baseURL = r.defaultCred.BaseURL
		}
		webURL := org.WebURL
		if webURL == "" {
			webURL = r.defaultWeb
		}
		return Resolved{
			Credential: hostclient.Credential{ID: "org:" + org.Name, Token: token, BaseURL: baseURL},
			WebURL:     webURL,
		}, nil
	}

	if r.defaultCred.Token == "" {
		return Resolved{}, ErrNoCredential
	}
	return Resolved{Credential: r.defaultCred, WebURL: r.defaultWeb}, nil
}

// Organizations returns every configured organization name, for the
// "given nothing" branch of §4.1's Contract.
func (r *Registry) Organizations() []string {
	names := make([]string, 0, len(r.orgs))
	for _, org := range r.orgs {
		names = append(names, org.Name)
	}
	return names
}

// Validate contacts the host's identity endpoint with each configured
// credential (the default plus every organization override) and classifies
// it valid, invalid, or unreachable (§4.1). Used at startup and by the
// CLI's verbose mode.
func (r *Registry) Validate(ctx context.Context) []Validation {
	var out []Validation

	check := func(label string, cred hostclient.Credential) Validation {
		if cred.Token == "" {
			return Validation{Organization: label, Status: StatusInvalid}
		}
		if r.cache != nil {
			if cached, ok := r.cache.Get(ctx, cred.ID); ok {
				return cached
			}
		}
		client := r.clientFor(cred)
		viewer, err := client.GetViewer(ctx)
		var result Validation
		switch {
		case err == nil:
			result = Validation{Organization: label, Status: StatusValid, Login: viewer.Login}
		case hostclient.Is(err, hostclient.KindUnauthorized):
			result = Validation{Organization: label, Status: StatusInvalid}
		default:
			result = Validation{Organization: label, Status: StatusUnreachable}
		}
		if r.cache != nil {
			r.cache.Set(ctx, cred.ID, result, validationTTL)
		}
		return result
	}

	if r.defaultCred.Token != "" {
		out = append(out, check("default", r.defaultCred))
	}
	for _, org := range r.orgs {
		token := org.Token
		if token == "" {
			continue // vault-backed secrets aren't resolved during validate; resolved lazily at sync time
		}
		out = append(out, check(org.Name, hostclient.Credential{ID: "org:" + org.Name, Token: token, BaseURL: org.BaseURL}))
	}
	return out
}

func (r *Registry) clientFor(cred hostclient.Credential) *hostclient.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[cred.ID]; ok {
		return c
	}
	c := r.newClient(cred)
	r.clients[cred.ID] = c
	return c
}

package config

import "testing"

func TestNewDefaults(t *testing.T) {
	cfg := New()
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.SLA.ResponseTimeHours != 24 {
		t.Fatalf("expected default response SLA 24h, got %v", cfg.SLA.ResponseTimeHours)
	}
	if cfg.SLA.ResolutionTimeHours != 168 {
		t.Fatalf("expected default resolution SLA 168h, got %v", cfg.SLA.ResolutionTimeHours)
	}
	if cfg.Sync.StaleDays != 30 {
		t.Fatalf("expected default stale threshold 30 days, got %d", cfg.Sync.StaleDays)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GitHub.BaseURL != "https://api.github.com" {
		t.Fatalf("expected default base URL, got %s", cfg.GitHub.BaseURL)
	}
}

func TestOrgsFromEnv(t *testing.T) {
	t.Setenv("GREPORT_ORG_ACME_TOKEN", "ghp_test")
	orgs := orgsFromEnv()
	found := false
	for _, o := range orgs {
		if o.Name == "ACME" && o.Token == "ghp_test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ACME org from env, got %+v", orgs)
	}
}

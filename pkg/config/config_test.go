package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jlserve.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != "" || len(cfg.Routes) != 0 {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadNormalizesRoutePaths(t *testing.T) {
	path := writeConfig(t, `
[server]
listen = ":9000"

[[route]]
path = "greet"
timeout_ms = 250

[[route]]
path = "/slow/"
[route.rate_limit]
rps = 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != ":9000" {
		t.Fatalf("server.listen not read: %+v", cfg.Server)
	}
	if cfg.Routes[0].Path != "/greet" {
		t.Fatalf("missing leading slash not normalized: %q", cfg.Routes[0].Path)
	}
	if cfg.Routes[1].Path != "/slow" {
		t.Fatalf("trailing slash not cleaned: %q", cfg.Routes[1].Path)
	}
	if cfg.Routes[1].RateLimit.Burst != 5 {
		t.Fatalf("burst must default to rps: %+v", cfg.Routes[1].RateLimit)
	}

	pol, ok := cfg.PolicyFor("/greet")
	if !ok || pol.TimeoutMS != 250 {
		t.Fatalf("policy lookup failed: %+v %v", pol, ok)
	}
	if _, ok := cfg.PolicyFor("/nope"); ok {
		t.Fatal("lookup for unknown path must miss")
	}
}

func TestLoadRejectsDuplicatePolicies(t *testing.T) {
	path := writeConfig(t, `
[[route]]
path = "/greet"

[[route]]
path = "greet"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("duplicate route policy accepted")
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	path := writeConfig(t, `
[[route]]
path = "/greet"
timeout_ms = -1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("negative timeout accepted")
	}
}

func TestLoadRejectsZeroRPS(t *testing.T) {
	path := writeConfig(t, `
[[route]]
path = "/greet"
[route.rate_limit]
rps = 0
burst = 3
`)
	if _, err := Load(path); err == nil {
		t.Fatal("rate limit with rps=0 accepted")
	}
}

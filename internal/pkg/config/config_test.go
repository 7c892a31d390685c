package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Port != "8080" || cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.TokenStore != StoreRedis || cfg.Session.ResolveWait != 5*time.Second {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.Session.MaxSessions != 10000 {
		t.Fatalf("unexpected session cap %d", cfg.Session.MaxSessions)
	}
	if cfg.Mongo.URI != "" {
		t.Fatalf("mongo should be disabled by default")
	}
	if got := cfg.OAuthURL(); got != "http://localhost:5000/api/auth/google" {
		t.Fatalf("unexpected oauth url %q", got)
	}
	if cfg.IsProduction() {
		t.Fatalf("default env is development")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":            "9090",
		"ENV":             "production",
		"TOKEN_STORE":     "memory",
		"RESOLVE_WAIT":    "250ms",
		"OAUTH_LOGIN_URL": "https://id.example.com/google",
		"CSRF_KEY":        "0123456789abcdef0123456789abcdef",
		"REDIS_DB":        "3",
		"SESSION_MAX":     "50",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Port != "9090" || !cfg.IsProduction() || cfg.Session.TokenStore != StoreMemory {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Session.ResolveWait != 250*time.Millisecond || cfg.Redis.DB != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Session.MaxSessions != 50 {
		t.Fatalf("session cap not applied: %d", cfg.Session.MaxSessions)
	}
	if cfg.OAuthURL() != "https://id.example.com/google" {
		t.Fatalf("unexpected oauth url %q", cfg.OAuthURL())
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := []map[string]string{
		{"TOKEN_STORE": "disk"},
		{"CSRF_KEY": "short"},
		{"RESOLVE_WAIT": "0s"},
		{"SESSION_MAX": "0"},
		{"API_TIMEOUT": "soon"},
	}
	for _, env := range cases {
		if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Fatalf("%v: expected error", env)
		}
	}
}

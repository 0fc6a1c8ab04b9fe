// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("TRANSITION_COOLDOWN", "5s")
	t.Setenv("PUBLIC_BASE_URL", "https://vouchers.example.com/")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.TransitionCooldown != 5*time.Second {
		t.Errorf("expected 5s cooldown, got %s", cfg.TransitionCooldown)
	}
	if cfg.PublicBaseURL != "https://vouchers.example.com" {
		t.Errorf("trailing slash should be trimmed, got %s", cfg.PublicBaseURL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("TRANSITION_COOLDOWN", "5s")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-cooldown", "0s", "-session-secret", "cli-secret"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.TransitionCooldown != 0 {
		t.Errorf("explicit zero cooldown should disable it, got %s", cfg.TransitionCooldown)
	}
	if cfg.SessionSecret != "cli-secret" {
		t.Errorf("expected CLI secret, got %s", cfg.SessionSecret)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TRANSITION_COOLDOWN", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("IMAGE_DIR", "")
	t.Setenv("PUBLIC_BASE_URL", "")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" || cfg.DatabaseURL != DefaultDatabaseURL {
		t.Errorf("expected sqlite default, got %s %s", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.TransitionCooldown != DefaultTransitionCooldown {
		t.Errorf("expected default cooldown, got %s", cfg.TransitionCooldown)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("expected default session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.MaxImageBytes != DefaultMaxImageBytes {
		t.Errorf("expected 5MB image limit, got %d", cfg.MaxImageBytes)
	}
	if cfg.ImageDir != DefaultImageDir {
		t.Errorf("expected default image dir, got %s", cfg.ImageDir)
	}
	if cfg.PublicBaseURL != "http://localhost:3318" {
		t.Errorf("unexpected base URL %s", cfg.PublicBaseURL)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing secret", map[string]string{"SESSION_SECRET": ""}, nil},
		{"postgres without url", map[string]string{"SESSION_SECRET": "s", "DATABASE_TYPE": "postgres", "DATABASE_URL": ""}, nil},
		{"unknown database type", map[string]string{"SESSION_SECRET": "s"}, []string{"-t", "mysql"}},
		{"bad port", map[string]string{"SESSION_SECRET": "s", "PORT": "eighty"}, nil},
		{"bad cooldown", map[string]string{"SESSION_SECRET": "s", "TRANSITION_COOLDOWN": "soon"}, nil},
		{"zero session ttl", map[string]string{"SESSION_SECRET": "s", "SESSION_TTL": "0s"}, nil},
		{"bad image limit", map[string]string{"SESSION_SECRET": "s", "MAX_IMAGE_BYTES": "-1"}, nil},
		{"bad trust proxy", map[string]string{"SESSION_SECRET": "s", "TRUST_PROXY": "maybe"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseFlags_TrustProxy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRUST_PROXY", "")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TrustProxy {
		t.Error("forwarding headers should not be trusted by default")
	}

	t.Setenv("TRUST_PROXY", "true")
	if cfg, err = ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	if !cfg.TrustProxy {
		t.Error("TRUST_PROXY=true should enable proxy headers")
	}

	t.Setenv("TRUST_PROXY", "")
	if cfg, err = ParseFlags([]string{"-trust-proxy"}); err != nil {
		t.Fatal(err)
	}
	if !cfg.TrustProxy {
		t.Error("-trust-proxy should enable proxy headers")
	}
}

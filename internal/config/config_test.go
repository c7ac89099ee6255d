package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codebuddy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("expected default ttl 24h, got %s", cfg.JWTTTL)
	}
	if cfg.LLMTimeout != 12*time.Second {
		t.Errorf("expected default llm timeout 12s, got %s", cfg.LLMTimeout)
	}
	if cfg.LLMAPIKey != "" {
		t.Errorf("expected no api key by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
http_port: 9090
database_url: "file:test.db"
jwt_secret: "file-secret"
jwt_ttl_hours: 2
llm_base_url: "http://localhost:11434"
llm_model: "llama3"
llm_timeout_ms: 5000
log_level: "debug"
log_pretty: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.JWTSecret != "file-secret" {
		t.Errorf("expected file secret, got %q", cfg.JWTSecret)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Errorf("expected ttl 2h, got %s", cfg.JWTTTL)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("expected llm timeout 5s, got %s", cfg.LLMTimeout)
	}
	if cfg.LLMBaseURL != "http://localhost:11434" || cfg.LLMModel != "llama3" {
		t.Errorf("unexpected llm settings: %q %q", cfg.LLMBaseURL, cfg.LLMModel)
	}
	if cfg.LogLevel != "debug" || !cfg.LogPretty {
		t.Errorf("unexpected log settings: %q %v", cfg.LogLevel, cfg.LogPretty)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
http_port: 9090
jwt_secret: "file-secret"
`)
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_TTL", "30m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 7070 {
		t.Errorf("expected env port 7070, got %d", cfg.HTTPPort)
	}
	if cfg.JWTSecret != "env-secret" {
		t.Errorf("expected env secret, got %q", cfg.JWTSecret)
	}
	if cfg.JWTTTL != 30*time.Minute {
		t.Errorf("expected ttl 30m, got %s", cfg.JWTTTL)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("expected defaults for missing file, got port %d", cfg.HTTPPort)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error when jwt secret is missing")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "http_port: [not an int\n")
	t.Setenv("JWT_SECRET", "env-secret")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

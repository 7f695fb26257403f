package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.DocsPath != "/api-docs" {
		t.Fatalf("expected docs path /api-docs, got %q", cfg.DocsPath)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected 10s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("expected 1MB body limit, got %d", cfg.MaxBodyBytes)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("expected addr :8080, got %q", cfg.Addr())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":             "9090",
		"DOCS_PATH":        "/docs",
		"SHUTDOWN_TIMEOUT": "3s",
		"MAX_BODY_BYTES":   "2048",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.DocsPath != "/docs" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.ShutdownTimeout)
	}
	if cfg.MaxBodyBytes != 2048 {
		t.Fatalf("expected 2048, got %d", cfg.MaxBodyBytes)
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantMessage string
		wantInvalid bool
	}{
		{name: "non numeric port", env: map[string]string{"PORT": "http"}, wantInvalid: true},
		{name: "docs path without slash", env: map[string]string{"DOCS_PATH": "docs"}, wantInvalid: true},
		{name: "negative timeout", env: map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}, wantInvalid: true},
		{name: "zero body limit", env: map[string]string{"MAX_BODY_BYTES": "0"}, wantInvalid: true},
		{name: "bad duration", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}, wantMessage: "SHUTDOWN_TIMEOUT"},
		{name: "bad body limit", env: map[string]string{"MAX_BODY_BYTES": "big"}, wantMessage: "MAX_BODY_BYTES"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tc.env))
			if err == nil {
				t.Fatalf("expected error")
			}
			var verrs validator.ValidationErrors
			if tc.wantInvalid && !errors.As(err, &verrs) {
				t.Fatalf("expected validator.ValidationErrors, got %T: %v", err, err)
			}
			if tc.wantMessage != "" && !strings.Contains(err.Error(), tc.wantMessage) {
				t.Fatalf("expected error mentioning %s, got %v", tc.wantMessage, err)
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCS_PATH=/reference\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("PORT", "7070")
	// godotenv never overrides existing variables; make sure DOCS_PATH starts unset.
	t.Setenv("DOCS_PATH", "")
	os.Unsetenv("DOCS_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("expected environment port 7070, got %q", cfg.Port)
	}
	if cfg.DocsPath != "/reference" {
		t.Fatalf("expected docs path from .env, got %q", cfg.DocsPath)
	}
}

func TestLoadWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
}

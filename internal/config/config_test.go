package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.App.Port)
	}
	if cfg.Upload.MaxBytes != 20<<20 {
		t.Fatalf("expected default upload cap, got %d", cfg.Upload.MaxBytes)
	}
	if cfg.RabbitMQ.EnrichmentEventQueue == "" {
		t.Fatal("expected default enrichment event queue")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9090

[llm]
model = "file-model"
timeout_seconds = 30

[upload]
extract_pdf_text = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("APP_CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.Port != 9090 {
		t.Fatalf("expected port from file, got %d", cfg.App.Port)
	}
	if cfg.LLM.Model != "env-model" {
		t.Fatalf("expected env override, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.TimeoutSeconds != 30 {
		t.Fatalf("expected timeout from file, got %d", cfg.LLM.TimeoutSeconds)
	}
	if !cfg.Upload.ExtractPDFText {
		t.Fatal("expected extract_pdf_text from file")
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.App.CORSOrigins)
	}
	if got := cfg.HTTPAddr(); got != "0.0.0.0:9090" {
		t.Fatalf("unexpected http addr %q", got)
	}
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_PORT", "not-a-number")
	t.Setenv("UPLOAD_EXTRACT_PDF_TEXT", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.Port != 8080 {
		t.Fatalf("expected fallback port, got %d", cfg.App.Port)
	}
	if cfg.Upload.ExtractPDFText {
		t.Fatal("expected fallback extract flag")
	}
}

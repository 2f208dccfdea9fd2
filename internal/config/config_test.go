package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("HTTP_PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.ReportTTL != 72*time.Hour {
		t.Fatalf("expected default report ttl, got %v", cfg.ReportTTL)
	}
	if cfg.HasLLMProvider() {
		t.Fatalf("expected no provider configured")
	}
}

func TestLoadConfigReadsProviderKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("ANALYZE_RATE_LIMIT", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.HasLLMProvider() || cfg.GeminiAPIKey != "g-key" {
		t.Fatalf("expected gemini key to be loaded, got %+v", cfg)
	}
	if cfg.AnalyzeRateLimit != 3 {
		t.Fatalf("expected rate limit 3, got %d", cfg.AnalyzeRateLimit)
	}
}

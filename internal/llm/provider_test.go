package llm

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"creator-growth/internal/config"
)

func TestSelectProvider(t *testing.T) {
	anthropic := Provider{Name: ProviderAnthropic, Client: &MockClient{}}
	openai := Provider{Name: ProviderOpenAI, Client: &MockClient{}}
	gemini := Provider{Name: ProviderGemini, Client: &MockClient{}}
	local := Provider{Name: "ollama", Client: &MockClient{}}
	other := Provider{Name: "openrouter", Client: &MockClient{}}

	tests := []struct {
		name      string
		available []Provider
		want      string
	}{
		{name: "primary wins regardless of position", available: []Provider{gemini, openai, anthropic}, want: ProviderAnthropic},
		{name: "secondary when primary missing", available: []Provider{gemini, openai}, want: ProviderOpenAI},
		{name: "tertiary alone", available: []Provider{local, gemini}, want: ProviderGemini},
		{name: "first available when none preferred", available: []Provider{local, other}, want: "ollama"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectProvider(tt.available)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got.Name)
			}
		})
	}
}

func TestSelectProviderEmpty(t *testing.T) {
	if _, err := SelectProvider(nil); !errors.Is(err, ErrNoProviderConfigured) {
		t.Fatalf("expected ErrNoProviderConfigured, got %v", err)
	}
}

func TestProvidersFromConfig(t *testing.T) {
	cfg := &config.Config{
		OpenAIAPIKey:    "sk-test",
		LLMAPIKey:       "local-key",
		LLMBaseURL:      "http://localhost:11434/v1",
		LLMModel:        "llama3",
		LLMProviderName: "ollama",
	}
	providers := ProvidersFromConfig(context.Background(), cfg, zap.NewNop())
	if len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(providers))
	}
	if providers[0].Name != ProviderOpenAI || providers[1].Name != "ollama" {
		t.Fatalf("unexpected provider order: %s, %s", providers[0].Name, providers[1].Name)
	}

	if got := ProvidersFromConfig(context.Background(), &config.Config{}, nil); len(got) != 0 {
		t.Fatalf("expected no providers without credentials, got %d", len(got))
	}
}

package llm

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"creator-growth/internal/config"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// ErrNoProviderConfigured se devuelve cuando no hay ningún proveedor disponible.
var ErrNoProviderConfigured = errors.New("no llm provider configured")

// PreferenceOrder es el orden fijo en que se eligen proveedores.
var PreferenceOrder = []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini}

// Provider asocia un nombre con su cliente.
type Provider struct {
	Name   string
	Client Client
}

// SelectProvider devuelve el primer proveedor preferido presente en available;
// si ninguno coincide, el primero disponible. Es una función pura.
func SelectProvider(available []Provider) (Provider, error) {
	if len(available) == 0 {
		return Provider{}, ErrNoProviderConfigured
	}
	for _, name := range PreferenceOrder {
		for _, p := range available {
			if strings.EqualFold(p.Name, name) {
				return p, nil
			}
		}
	}
	return available[0], nil
}

// ProvidersFromConfig arma la lista de disponibilidad según las credenciales configuradas.
// Un proveedor que no se puede construir se loguea y se omite.
func ProvidersFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) []Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	var providers []Provider
	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, Provider{Name: ProviderAnthropic, Client: NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)})
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, Provider{Name: ProviderOpenAI, Client: NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)})
	}
	if cfg.GeminiAPIKey != "" {
		gc, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini provider disabled", zap.Error(err))
		} else {
			providers = append(providers, Provider{Name: ProviderGemini, Client: gc})
		}
	}
	if cfg.LLMAPIKey != "" {
		name := cfg.LLMProviderName
		if strings.TrimSpace(name) == "" {
			name = "compatible"
		}
		providers = append(providers, Provider{Name: name, Client: NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)})
	}
	return providers
}

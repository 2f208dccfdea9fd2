package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Persistencia: Postgres si hay DATABASE_URL, SQLite si hay SQLITE_PATH, memoria si no.
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL"`

	// Endpoint OpenAI-compatible genérico (ollama, openrouter, etc).
	LLMAPIKey       string `env:"LLM_API_KEY"`
	LLMBaseURL      string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel        string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMProviderName string `env:"LLM_PROVIDER_NAME" envDefault:"compatible"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Fame Report"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ReportSigningSecret string        `env:"REPORT_SIGNING_SECRET" envDefault:"dev-report-secret"`
	ReportTTL           time.Duration `env:"REPORT_TTL" envDefault:"72h"`
	AdminKeyHash        string        `env:"ADMIN_KEY_HASH"`

	AnalyzeRateLimit  int           `env:"ANALYZE_RATE_LIMIT" envDefault:"10"`
	AnalyzeRateWindow time.Duration `env:"ANALYZE_RATE_WINDOW" envDefault:"1h"`
	ResearchTimeout   time.Duration `env:"RESEARCH_TIMEOUT" envDefault:"45s"`
}

// LoadConfig carga .env (si existe) y luego las variables de entorno.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HasLLMProvider indica si hay al menos una credencial de proveedor configurada.
func (c *Config) HasLLMProvider() bool {
	return c.AnthropicAPIKey != "" || c.OpenAIAPIKey != "" || c.GeminiAPIKey != "" || c.LLMAPIKey != ""
}

package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Completion providers.
const (
	ProviderGroq = "groq"
	ProviderArk  = "ark"
)

// Config aggregates every setting of the service.
type Config struct {
	Server     ServerConfig
	Completion CompletionConfig
	Escalation EscalationConfig
	Clinic     ClinicConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	completion, err := loadCompletionConfig()
	if err != nil {
		return nil, err
	}

	escalation, err := loadEscalationConfig()
	if err != nil {
		return nil, err
	}

	clinic, err := loadClinicConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Completion: completion, Escalation: escalation, Clinic: clinic}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are accepted as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// CompletionConfig selects and configures the chat-completion backend.
type CompletionConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxTokens   *int
	Timeout     time.Duration
	Ark         AIConfig
}

// Enabled reports whether the selected provider has credentials.
func (c CompletionConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Ark.Enabled()
	default:
		return c.APIKey != "" && c.Model != ""
	}
}

// AIConfig carries the Ark credentials used when Provider is "ark".
type AIConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled reports whether the required Ark keys are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model.
func (c AIConfig) NewChatModel(ctx context.Context, temperature *float64, maxTokens *int) (model.BaseChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	var temp *float32
	if temperature != nil {
		val := float32(*temperature)
		temp = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temp,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadCompletionConfig() (CompletionConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("COMPLETION_PROVIDER", ProviderGroq))
	if provider != ProviderGroq && provider != ProviderArk {
		return CompletionConfig{}, fmt.Errorf("invalid COMPLETION_PROVIDER value %q", provider)
	}

	temperature, err := parseOptionalFloatEnv("COMPLETION_TEMPERATURE")
	if err != nil {
		return CompletionConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("COMPLETION_MAX_TOKENS")
	if err != nil {
		return CompletionConfig{}, err
	}

	timeout, err := parseDurationEnv("COMPLETION_TIMEOUT", 20*time.Second)
	if err != nil {
		return CompletionConfig{}, err
	}

	return CompletionConfig{
		Provider:    provider,
		APIKey:      strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		Model:       getEnvOrDefault("GROQ_MODEL", "llama-3.3-70b-versatile"),
		BaseURL:     getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
		Ark: AIConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("Model")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
	}, nil
}

// EscalationConfig holds the voice-call credentials and numbers.
type EscalationConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
	Timeout    time.Duration
}

// Enabled is false when any of the four secrets is missing.
func (c EscalationConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != "" && c.ToNumber != ""
}

func loadEscalationConfig() (EscalationConfig, error) {
	timeout, err := parseDurationEnv("ESCALATION_TIMEOUT", 15*time.Second)
	if err != nil {
		return EscalationConfig{}, err
	}

	return EscalationConfig{
		AccountSID: strings.TrimSpace(os.Getenv("TWILIO_SID")),
		AuthToken:  strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		FromNumber: strings.TrimSpace(os.Getenv("TWILIO_PHONE_NUMBER")),
		ToNumber:   strings.TrimSpace(os.Getenv("GUARDIAN_PHONE_NUMBER")),
		Timeout:    timeout,
	}, nil
}

// ClinicConfig covers the two page surfaces.
type ClinicConfig struct {
	AccessKey       string
	ClinicianName   string
	ContactPhone    string
	PatientBadge    string
	RefreshInterval time.Duration
	PageIconPath    string
}

func loadClinicConfig() (ClinicConfig, error) {
	refresh, err := parseDurationEnv("DASHBOARD_REFRESH", 3*time.Second)
	if err != nil {
		return ClinicConfig{}, err
	}
	if refresh < time.Second {
		refresh = time.Second
	}

	return ClinicConfig{
		AccessKey:       getEnvOrDefault("CLINICIAN_ACCESS_KEY", "123"),
		ClinicianName:   getEnvOrDefault("CLINICIAN_NAME", "Dr. Kashish"),
		ContactPhone:    getEnvOrDefault("CLINICIAN_CONTACT_PHONE", "+919953822550"),
		PatientBadge:    getEnvOrDefault("PATIENT_BADGE", "PSY-EL-011"),
		RefreshInterval: refresh,
		PageIconPath:    getEnvOrDefault("PAGE_ICON_PATH", "image_b48068.png"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	// Bare integers are seconds.
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
		}
		return time.Duration(secs) * time.Second, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

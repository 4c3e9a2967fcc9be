package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "COMPLETION_PROVIDER", "GROQ_API_KEY", "GROQ_MODEL", "GROQ_BASE_URL",
		"COMPLETION_TEMPERATURE", "COMPLETION_MAX_TOKENS", "COMPLETION_TIMEOUT",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model",
		"TWILIO_SID", "TWILIO_AUTH_TOKEN", "TWILIO_PHONE_NUMBER", "GUARDIAN_PHONE_NUMBER",
		"ESCALATION_TIMEOUT", "CLINICIAN_ACCESS_KEY", "DASHBOARD_REFRESH", "PAGE_ICON_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Completion.Provider != ProviderGroq || cfg.Completion.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected completion defaults %+v", cfg.Completion)
	}
	if cfg.Completion.Enabled() {
		t.Fatal("completion must be disabled without an API key")
	}
	if cfg.Completion.Timeout != 20*time.Second {
		t.Fatalf("unexpected completion timeout %s", cfg.Completion.Timeout)
	}
	if cfg.Escalation.Enabled() {
		t.Fatal("escalation must be disabled without credentials")
	}
	if cfg.Clinic.AccessKey != "123" || cfg.Clinic.RefreshInterval != 3*time.Second {
		t.Fatalf("unexpected clinic defaults %+v", cfg.Clinic)
	}
}

func TestEscalationEnabledRequiresAllFour(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWILIO_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550001111")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Escalation.Enabled() {
		t.Fatal("expected escalation disabled with guardian number missing")
	}

	t.Setenv("GUARDIAN_PHONE_NUMBER", "+15550002222")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.Escalation.Enabled() {
		t.Fatal("expected escalation enabled")
	}
}

func TestLoadTimeouts(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPLETION_TIMEOUT", "30")
	t.Setenv("ESCALATION_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Completion.Timeout != 30*time.Second {
		t.Fatalf("unexpected completion timeout %s", cfg.Completion.Timeout)
	}
	if cfg.Escalation.Timeout != 5*time.Second {
		t.Fatalf("unexpected escalation timeout %s", cfg.Escalation.Timeout)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                  "80 80",
		"COMPLETION_PROVIDER":   "cohere",
		"COMPLETION_TIMEOUT":    "soon",
		"COMPLETION_MAX_TOKENS": "many",
		"DASHBOARD_REFRESH":     "-1",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestArkProviderEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPLETION_PROVIDER", "ARK")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "ep-123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Completion.Provider != ProviderArk || !cfg.Completion.Enabled() {
		t.Fatalf("expected enabled ark provider, got %+v", cfg.Completion)
	}
}

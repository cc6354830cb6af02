package config

import (
	"strings"
	"testing"
)

func baseConfig() *Config {
	return &Config{
		Telegram:  TelegramConfig{Token: "123:abc"},
		Weather:   WeatherConfig{APIKey: "owm-key"},
		Narrative: NarrativeConfig{APIKey: "llm-key"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := baseConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, expected longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Weather.Units != "metric" {
		t.Fatalf("weather.units = %q, expected metric", cfg.Weather.Units)
	}
	if cfg.Weather.TimeoutSeconds != 10 {
		t.Fatalf("weather.timeout_seconds = %d, expected 10", cfg.Weather.TimeoutSeconds)
	}
	if !strings.Contains(cfg.Narrative.BaseURL, "generativelanguage") {
		t.Fatalf("narrative.base_url = %q, expected Gemini default", cfg.Narrative.BaseURL)
	}
	if cfg.Narrative.Model != "gemini-1.5-flash" {
		t.Fatalf("narrative.model = %q", cfg.Narrative.Model)
	}
	if cfg.Catalog.Path != "data/trips.json" {
		t.Fatalf("catalog.path = %q", cfg.Catalog.Path)
	}
	if cfg.Database.Enabled() {
		t.Fatal("database should be disabled without a host")
	}
}

func TestNormalizeRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "telegram token"},
		{"missing weather key", func(c *Config) { c.Weather.APIKey = "" }, "weather.api_key"},
		{"missing narrative key", func(c *Config) { c.Narrative.APIKey = "" }, "narrative.api_key"},
		{"bad units", func(c *Config) { c.Weather.Units = "kelvin" }, "weather.units"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }, "run_mode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.mutate(cfg)
			err := Normalize(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestNormalizeWebhookMode(t *testing.T) {
	cfg := baseConfig()
	cfg.Telegram.RunMode = "webhook"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook mode without url")
	}

	cfg = baseConfig()
	cfg.Telegram.RunMode = "webhook"
	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize webhook: %v", err)
	}
}

func TestNormalizeDatabaseDefaults(t *testing.T) {
	cfg := baseConfig()
	cfg.Database.Host = "localhost"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !cfg.Database.Enabled() {
		t.Fatal("expected database enabled")
	}
	if cfg.Database.Port != "5432" || cfg.Database.SSLMode != "disable" || cfg.Database.MaxConnections != 4 {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := baseConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != "callback" {
		t.Fatalf("exclusion not normalized: %q", cfg.RateLimit.ExcludeUpdates[0])
	}

	cfg = baseConfig()
	cfg.RateLimit.ExcludeUpdates = []string{"poll"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown exclusion")
	}
}

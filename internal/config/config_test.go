package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_URL", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "COOKIE_SECURE", "REQUEUE_SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" || cfg.JWTTTL != 24 || cfg.LoginPath != "/login" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitLoginBurst != 5 {
		t.Errorf("rate limit defaults %v/%v", cfg.RateLimitRPS, cfg.RateLimitLoginBurst)
	}
	if cfg.RequeueSchedule != "@every 1h" || cfg.CookieSecure {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_URL", "https://tasks.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("JWT_TTL_HOURS", "not-a-number")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.AppURL != "https://tasks.example.com" {
		t.Errorf("AppURL = %q, trailing slash should be trimmed", cfg.AppURL)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("origins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	if cfg.RateLimitRPS != 2.5 || !cfg.CookieSecure {
		t.Errorf("rps %v secure %v", cfg.RateLimitRPS, cfg.CookieSecure)
	}
	if cfg.JWTTTL != 24 {
		t.Errorf("malformed int should fall back, got %d", cfg.JWTTTL)
	}
}

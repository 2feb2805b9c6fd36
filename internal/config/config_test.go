package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, expected %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, expected %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Provider.Provider != "openai" {
		t.Errorf("Provider.Provider = %q, expected %q", cfg.Provider.Provider, "openai")
	}
	if cfg.Presence.StalenessMinutes != 5 {
		t.Errorf("Presence.StalenessMinutes = %d, expected 5", cfg.Presence.StalenessMinutes)
	}
	if cfg.Retention.ActivityLogDays != 30 {
		t.Errorf("Retention.ActivityLogDays = %d, expected 30", cfg.Retention.ActivityLogDays)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis should be disabled by default")
	}
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Presence.StalenessMinutes != 5 {
		t.Errorf("StalenessMinutes = %d, expected 5", cfg.Presence.StalenessMinutes)
	}
	if cfg.Retention.ActivityLogDays != 30 {
		t.Errorf("ActivityLogDays = %d, expected 30", cfg.Retention.ActivityLogDays)
	}
	if cfg.Provider.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, expected 60", cfg.Provider.TimeoutSeconds)
	}
	if cfg.Provider.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, expected 4096", cfg.Provider.MaxTokens)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Presence.StalenessMinutes = 10
	cfg.Provider.TimeoutSeconds = 120
	cfg.applyDefaults()

	if cfg.Presence.StalenessMinutes != 10 {
		t.Errorf("StalenessMinutes = %d, expected explicit 10", cfg.Presence.StalenessMinutes)
	}
	if cfg.Provider.TimeoutSeconds != 120 {
		t.Errorf("TimeoutSeconds = %d, expected explicit 120", cfg.Provider.TimeoutSeconds)
	}
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PROVIDER_NAME", "anthropic")
	t.Setenv("PRESENCE_STALENESS_MINUTES", "2")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, expected env override", cfg.Server.Port)
	}
	if cfg.Provider.Provider != "anthropic" {
		t.Errorf("Provider.Provider = %q, expected env override", cfg.Provider.Provider)
	}
	if cfg.Presence.StalenessMinutes != 2 {
		t.Errorf("StalenessMinutes = %d, expected env override", cfg.Presence.StalenessMinutes)
	}
}

func TestParseRedisURL(t *testing.T) {
	cfg := &Config{}
	cfg.parseRedisURL("redis://:secret@localhost:6379/2")

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Addr = %q, expected %q", cfg.Redis.Addr, "localhost:6379")
	}
	if cfg.Redis.Password != "secret" {
		t.Errorf("Password = %q, expected %q", cfg.Redis.Password, "secret")
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("DB = %d, expected 2", cfg.Redis.DB)
	}
}

func TestParseRedisURL_Minimal(t *testing.T) {
	cfg := &Config{}
	cfg.parseRedisURL("redis://localhost:6379/0")

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Addr = %q, expected %q", cfg.Redis.Addr, "localhost:6379")
	}
	if cfg.Redis.Password != "" {
		t.Errorf("Password = %q, expected empty", cfg.Redis.Password)
	}
}

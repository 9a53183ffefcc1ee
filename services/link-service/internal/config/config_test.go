package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("CALLER_TOKEN_SECRET", "caller-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.GrantTimeout != 5*time.Second {
		t.Fatalf("GrantTimeout = %v, want %v", cfg.GrantTimeout, 5*time.Second)
	}
	if cfg.Mongo.Database != "linkbridge" {
		t.Fatalf("Mongo.Database = %q, want %q", cfg.Mongo.Database, "linkbridge")
	}
	if cfg.Caller.Audience != "link-service" {
		t.Fatalf("Caller.Audience = %q, want %q", cfg.Caller.Audience, "link-service")
	}
	if cfg.Consul.Enabled || cfg.Alert.Enabled {
		t.Fatal("consul and alerts must be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DISCORD_GUILD_ID", "guild-1")
	t.Setenv("DISCORD_ROLE_ID", "role-1")
	t.Setenv("GRANT_TIMEOUT", "2s")
	t.Setenv("ALERT_EMAIL_ENABLED", "true")
	t.Setenv("ALERT_EMAIL_TO", "ops@example.com,oncall@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discord.GuildID != "guild-1" || cfg.Discord.RoleID != "role-1" {
		t.Fatalf("Discord = %+v", cfg.Discord)
	}
	if cfg.GrantTimeout != 2*time.Second {
		t.Fatalf("GrantTimeout = %v, want 2s", cfg.GrantTimeout)
	}
	if len(cfg.Alert.To) != 2 || cfg.Alert.To[1] != "oncall@example.com" {
		t.Fatalf("Alert.To = %v", cfg.Alert.To)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing_bot_token", map[string]string{"CALLER_TOKEN_SECRET": "s"}, "DISCORD_BOT_TOKEN"},
		{"missing_caller_secret", map[string]string{"DISCORD_BOT_TOKEN": "t"}, "CALLER_TOKEN_SECRET"},
		{"alert_without_recipients", map[string]string{
			"DISCORD_BOT_TOKEN":   "t",
			"CALLER_TOKEN_SECRET": "s",
			"ALERT_EMAIL_ENABLED": "true",
		}, "ALERT_EMAIL_TO"},
		{"zero_grant_timeout", map[string]string{
			"DISCORD_BOT_TOKEN":   "t",
			"CALLER_TOKEN_SECRET": "s",
			"GRANT_TIMEOUT":       "0s",
		}, "GRANT_TIMEOUT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DISCORD_BOT_TOKEN", "")
			t.Setenv("CALLER_TOKEN_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Load() error = %v, want mention of %s", err, tc.wantErr)
			}
		})
	}
}

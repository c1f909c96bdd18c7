package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("WEBHOOK_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Database.URL != "" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Webhook.Timeout != 30*time.Second {
		t.Errorf("Webhook.Timeout = %v", cfg.Webhook.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadPort(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{"bare port", "9090", ":9090", false},
		{"colon prefixed", ":9090", ":9090", false},
		{"host and port", "127.0.0.1:9090", "127.0.0.1:9090", false},
		{"whitespace trimmed", "  9090  ", ":9090", false},
		{"embedded space", "90 90", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("PORT", tc.value)

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for PORT=%q", tc.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load err: %v", err)
			}
			if cfg.Server.Addr != tc.want {
				t.Fatalf("Addr = %q, want %q", cfg.Server.Addr, tc.want)
			}
		})
	}
}

func TestLoadWebhookTimeout(t *testing.T) {
	t.Setenv("WEBHOOK_TIMEOUT", "5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Webhook.Timeout != 5*time.Second {
		t.Fatalf("Webhook.Timeout = %v", cfg.Webhook.Timeout)
	}

	t.Setenv("WEBHOOK_TIMEOUT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero timeout")
	}

	t.Setenv("WEBHOOK_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric timeout")
	}
}

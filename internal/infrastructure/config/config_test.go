package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validJWTSecret meets the 32-character minimum.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/test.db"
mqtt:
  broker:
    host: "broker.local"
    port: 8883
    tls: true
  qos: 1
relay:
  workers: 4
  reconcile_interval: 30
alerts:
  push:
    enabled: true
    url: "https://push.example.com/notify"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("MQTT.Broker.TLS = false, want true")
	}
	if cfg.Relay.Workers != 4 {
		t.Errorf("Relay.Workers = %d, want 4", cfg.Relay.Workers)
	}
	if got := cfg.GetReconcileInterval(); got != 30*time.Second {
		t.Errorf("GetReconcileInterval() = %v, want 30s", got)
	}
	// Defaults survive for keys the file omits.
	if cfg.MQTT.KeepAlive != 60 {
		t.Errorf("MQTT.KeepAlive = %d, want default 60", cfg.MQTT.KeepAlive)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want default 8080", cfg.API.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker:
    host: "from-file"
security:
  jwt:
    secret: "short"
`)
	t.Setenv("LOCKGUARD_MQTT_HOST", "from-env")
	t.Setenv("LOCKGUARD_MQTT_PORT", "1884")
	t.Setenv("LOCKGUARD_RELAY_WORKERS", "2")
	t.Setenv("LOCKGUARD_JWT_SECRET", validJWTSecret)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "from-env" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "from-env")
	}
	if cfg.MQTT.Broker.Port != 1884 {
		t.Errorf("MQTT.Broker.Port = %d, want 1884", cfg.MQTT.Broker.Port)
	}
	if cfg.Relay.Workers != 2 {
		t.Errorf("Relay.Workers = %d, want 2", cfg.Relay.Workers)
	}
	if cfg.Security.JWT.Secret != validJWTSecret {
		t.Error("JWT secret was not overridden from the environment")
	}
}

func TestLoad_EnvOverrideIgnoresBadInt(t *testing.T) {
	path := writeConfig(t, `
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)
	t.Setenv("LOCKGUARD_API_PORT", "not-a-port")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want default 8080", cfg.API.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Security.JWT.Secret = validJWTSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults with secret",
			mutate: func(*Config) {},
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Relay.Workers = 0 },
			wantErr: "relay.workers",
		},
		{
			name:    "zero reconcile interval",
			mutate:  func(c *Config) { c.Relay.ReconcileInterval = 0 },
			wantErr: "relay.reconcile_interval",
		},
		{
			name:    "influx enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: "influxdb.url",
		},
		{
			name:    "email enabled without host",
			mutate:  func(c *Config) { c.Alerts.Email.Enabled = true; c.Alerts.Email.From = "a@b.c" },
			wantErr: "alerts.email.host",
		},
		{
			name:    "push enabled without url",
			mutate:  func(c *Config) { c.Alerts.Push.Enabled = true },
			wantErr: "alerts.push.url",
		},
		{
			name:    "missing JWT secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantErr: "security.jwt.secret is required",
		},
		{
			name:    "short JWT secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "too-short" },
			wantErr: "at least 32 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Path = ""
	cfg.API.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, want := range []string{"database.path", "api.port", "security.jwt.secret"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error = %v, missing %q", err, want)
		}
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.GetReadTimeout(); got != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetWriteTimeout(); got != 30*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetIdleTimeout(); got != 60*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 60s", got)
	}
	if got := cfg.GetPushTimeout(); got != 10*time.Second {
		t.Errorf("GetPushTimeout() = %v, want 10s", got)
	}
}

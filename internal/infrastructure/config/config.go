package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix shared by every environment override.
const EnvPrefix = "LOCKGUARD_"

// Config is the root configuration structure for LockGuard Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Relay     RelayConfig     `yaml:"relay"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Security  SecurityConfig  `yaml:"security"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	KeepAlive int                 `yaml:"keep_alive"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
// Delays are in seconds.
type MQTTReconnectConfig struct {
	InitialDelay   int `yaml:"initial_delay"`
	MaxDelay       int `yaml:"max_delay"`
	ConnectTimeout int `yaml:"connect_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains live event stream settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// RelayConfig controls the device session relay.
type RelayConfig struct {
	// Workers bounds how many inbound device messages are handled at once.
	Workers int `yaml:"workers"`

	// ReconcileInterval is the period of the resubscription sweep, in seconds.
	ReconcileInterval int `yaml:"reconcile_interval"`
}

// AlertsConfig contains the out-of-band intrusion alert channels.
type AlertsConfig struct {
	Email EmailConfig `yaml:"email"`
	Push  PushConfig  `yaml:"push"`
}

// EmailConfig contains SMTP settings for intrusion emails.
type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	TLS      bool   `yaml:"tls"`
}

// PushConfig contains the push-notification gateway settings.
type PushConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Timeout int    `yaml:"timeout"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains the shared secret used to verify tokens issued by the
// account service.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. A .env file in the working directory, if present
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern: LOCKGUARD_SECTION_KEY
// For example: LOCKGUARD_DATABASE_PATH, LOCKGUARD_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/lockguard.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lockguard-core",
			},
			QoS:       1,
			KeepAlive: 60,
			Reconnect: MQTTReconnectConfig{
				InitialDelay:   1,
				MaxDelay:       60,
				ConnectTimeout: 30,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 4096,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			Bucket:        "lockguard",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Relay: RelayConfig{
			Workers:           16,
			ReconcileInterval: 60,
		},
		Alerts: AlertsConfig{
			Email: EmailConfig{
				Port: 587,
				TLS:  true,
			},
			Push: PushConfig{
				Timeout: 10,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LOCKGUARD_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("DATABASE_PATH", &cfg.Database.Path)

	setString("MQTT_HOST", &cfg.MQTT.Broker.Host)
	setInt("MQTT_PORT", &cfg.MQTT.Broker.Port)
	setString("MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	setString("MQTT_PASSWORD", &cfg.MQTT.Auth.Password)

	setString("API_HOST", &cfg.API.Host)
	setInt("API_PORT", &cfg.API.Port)

	setBool("INFLUXDB_ENABLED", &cfg.InfluxDB.Enabled)
	setString("INFLUXDB_URL", &cfg.InfluxDB.URL)
	setString("INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

	setInt("RELAY_WORKERS", &cfg.Relay.Workers)

	setString("SMTP_HOST", &cfg.Alerts.Email.Host)
	setString("SMTP_USERNAME", &cfg.Alerts.Email.Username)
	setString("SMTP_PASSWORD", &cfg.Alerts.Email.Password)
	setString("PUSH_URL", &cfg.Alerts.Push.URL)
	setString("PUSH_TOKEN", &cfg.Alerts.Push.Token)

	// Always override in production.
	setString("JWT_SECRET", &cfg.Security.JWT.Secret)
}

// Validate checks the configuration for errors and security issues.
// Every problem found is reported, not just the first.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Relay.Workers < 1 {
		errs = append(errs, "relay.workers must be at least 1")
	}
	if c.Relay.ReconcileInterval < 1 {
		errs = append(errs, "relay.reconcile_interval must be at least 1 second")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.Alerts.Email.Enabled {
		if c.Alerts.Email.Host == "" {
			errs = append(errs, "alerts.email.host is required when email alerts are enabled")
		}
		if c.Alerts.Email.From == "" {
			errs = append(errs, "alerts.email.from is required when email alerts are enabled")
		}
	}
	if c.Alerts.Push.Enabled && c.Alerts.Push.URL == "" {
		errs = append(errs, "alerts.push.url is required when push alerts are enabled")
	}

	// Tokens gate manual unlocks of physical doors, so a weak secret is a
	// configuration error rather than a warning.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set LOCKGUARD_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetReconcileInterval returns the relay resubscription sweep period.
func (c *Config) GetReconcileInterval() time.Duration {
	return time.Duration(c.Relay.ReconcileInterval) * time.Second
}

// GetPushTimeout returns the push gateway request timeout.
func (c *Config) GetPushTimeout() time.Duration {
	return time.Duration(c.Alerts.Push.Timeout) * time.Second
}

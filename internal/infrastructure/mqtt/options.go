package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/lockguard-core/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is used when the config leaves connect_timeout unset.
	defaultConnectTimeout = 30 * time.Second

	// defaultOperationTimeout bounds how long publish and subscribe wait for
	// the broker's acknowledgement.
	defaultOperationTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is used when the config leaves keep_alive unset.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	tlsMinVersion = tls.VersionTLS12
)

// clientID returns the configured client ID, or a unique one when unset so
// two Core instances never kick each other off the broker.
func clientID(cfg config.MQTTConfig) string {
	if cfg.Broker.ClientID != "" {
		return cfg.Broker.ClientID
	}
	return "lockguard-" + uuid.NewString()[:8]
}

// brokerURL returns tcp:// or ssl:// depending on cfg.Broker.TLS.
func brokerURL(cfg config.MQTTConfig) string {
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
}

// buildClientOptions creates paho MQTT options from LockGuard config.
//
// Sessions are clean: the broker forgets subscriptions on every reconnect
// and the relay re-subscribes from its connected handler. Reconnect backoff
// is owned entirely by paho.
func buildClientOptions(cfg config.MQTTConfig, id string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(brokerURL(cfg))
	opts.SetClientID(id)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	// Each message gets its own goroutine so a slow handler never stalls
	// keepalive processing. The relay bounds concurrent handler work.
	opts.SetOrderMatters(false)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(seconds(cfg.Reconnect.InitialDelay, time.Second))
	opts.SetMaxReconnectInterval(seconds(cfg.Reconnect.MaxDelay, time.Minute))

	opts.SetConnectTimeout(seconds(cfg.Reconnect.ConnectTimeout, defaultConnectTimeout))
	opts.SetKeepAlive(seconds(cfg.KeepAlive, defaultKeepAlive))

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// seconds converts a config value in seconds, substituting def when unset.
func seconds(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

// configureLWT sets up Last Will and Testament for offline detection.
//
// Topic: lockguard/system/status, QoS 1, retained.
func configureLWT(opts *pahomqtt.ClientOptions, id string) {
	opts.SetWill(Topics{}.SystemStatus(), statusPayload("offline", id, "unexpected_disconnect"), 1, true)
}

// statusPayload builds the JSON body published on the system status topic.
func statusPayload(status, id, reason string) string {
	if reason == "" {
		return fmt.Sprintf(`{"status":%q,"client_id":%q,"timestamp":%q}`,
			status, id, time.Now().UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf(`{"status":%q,"client_id":%q,"reason":%q,"timestamp":%q}`,
		status, id, reason, time.Now().UTC().Format(time.RFC3339))
}

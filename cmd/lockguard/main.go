// LockGuard Core - Door Lock Session Relay
//
// This is the main entry point for the LockGuard Core service. Core sits
// between ESP32 door locks and their owners:
//   - Verifies access codes submitted on the keypad and drives the lock
//   - Raises intrusion alerts by email and push notification
//   - Records every lock event for the owner's history
//   - Serves a small authenticated API for manual control and live events
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nerrad567/lockguard-core/internal/access"
	"github.com/nerrad567/lockguard-core/internal/actuator"
	"github.com/nerrad567/lockguard-core/internal/alert"
	"github.com/nerrad567/lockguard-core/internal/api"
	"github.com/nerrad567/lockguard-core/internal/audit"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/database"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/logging"
	"github.com/nerrad567/lockguard-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/lockguard-core/internal/relay"
	"github.com/nerrad567/lockguard-core/internal/user"
	"github.com/nerrad567/lockguard-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		err = runMigrate(ctx, os.Args[2:], os.Stdout)
	} else {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Shutdown runs in reverse start order: API, relay, InfluxDB, MQTT, then
// the database. The relay drains in-flight handlers before MQTT goes away
// so that no command is lost mid-publish.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting LockGuard Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	users := user.NewRepository(db.DB)
	events := audit.NewSQLiteRepository(db.DB)

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.With("component", "mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", mqttClient.ClientID(),
	)

	recorders := relay.Recorders{audit.NewRecorder(events)}
	var sinkHealth api.HealthChecker // stays nil when InfluxDB is disabled
	influxClient, err := connectInflux(ctx, cfg.InfluxDB, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			// Handlers have drained by now; send their last points first.
			log.Info("flushing InfluxDB writes")
			influxClient.Flush()
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		recorders = append(recorders, influxClient)
		sinkHealth = influxClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := relay.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	lock := actuator.New(mqttClient, mqttClient.QoS())
	hub := api.NewHub(cfg.WebSocket, log.With("component", "websocket"))

	sessions, err := relay.New(relay.Options{
		Transport:         mqttClient,
		Identities:        users,
		Verifier:          access.NewVerifier(users),
		Actuator:          lock,
		Alerter:           newAlerter(cfg, users, log),
		Recorder:          recorders,
		Observer:          hub,
		Logger:            log.With("component", "relay"),
		Metrics:           metrics,
		Workers:           cfg.Relay.Workers,
		ReconcileInterval: cfg.GetReconcileInterval(),
	})
	if err != nil {
		return fmt.Errorf("creating relay: %w", err)
	}

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected, resubscribing")
		sessions.HandleConnected()
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
		sessions.HandleDisconnected(err)
	})

	if startErr := sessions.Start(ctx); startErr != nil {
		return fmt.Errorf("starting relay: %w", startErr)
	}
	defer func() {
		log.Info("stopping relay")
		if closeErr := sessions.Close(); closeErr != nil {
			log.Error("error stopping relay", "error", closeErr)
		}
	}()
	log.Info("relay started", "subscriptions", sessions.Subscriptions())

	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Lock:     lock,
		Codes:    users,
		Events:   events,
		Relay:    sessions,
		DB:       db,
		MQTT:     mqttClient,
		Influx:   sinkHealth,
		Hub:      hub,
		Gatherer: registry,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("LockGuard Core started")

	<-ctx.Done()

	log.Info("shutdown signal received")
	return nil
}

// connectInflux connects the optional time-series sink. It returns a nil
// client when InfluxDB is disabled.
func connectInflux(ctx context.Context, cfg config.InfluxDBConfig, log *logging.Logger) (*influxdb.Client, error) {
	client, err := influxdb.Connect(ctx, cfg)
	if errors.Is(err, influxdb.ErrDisabled) {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}

	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)
	return client, nil
}

// newAlerter builds the intrusion alert dispatcher from the enabled channels.
func newAlerter(cfg *config.Config, emails alert.EmailLookup, log *logging.Logger) *alert.Dispatcher {
	alerts := cfg.Alerts

	// Assign only when enabled: a typed nil would not disable the channel.
	var mailer alert.Mailer
	if alerts.Email.Enabled {
		mailer = alert.NewSMTPMailer(alerts.Email)
	}

	var pusher alert.Pusher
	if alerts.Push.Enabled {
		pusher = alert.NewHTTPPusher(alerts.Push.URL, alerts.Push.Token, cfg.GetPushTimeout())
	}

	log.Info("intrusion alerts configured",
		"email", alerts.Email.Enabled,
		"push", alerts.Push.Enabled,
	)
	return alert.NewDispatcher(emails, mailer, pusher, log.With("component", "alert"))
}

// getConfigPath returns the configuration file path.
// Checks LOCKGUARD_CONFIG environment variable first, then uses default.
func getConfigPath() string {
	if path := os.Getenv("LOCKGUARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// Package config handles loading and validating LockGuard Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Loading a local .env file for development secrets
//   - Overriding with LOCKGUARD_* environment variables
//   - Validation of required fields
//
// Security Considerations:
//   - Broker, SMTP and push credentials should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - The JWT secret must match the account service that issues tokens
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.Broker.Host)
package config

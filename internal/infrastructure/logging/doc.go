// Package logging provides structured logging for LockGuard Core.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same shape and default fields.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("relay started", "identities", 12)
//	logger.Error("publish failed", "topic", topic, "error", err)
//
// # Security
//
// Never log access codes, tokens, or SMTP/broker passwords. Log the identity
// and the outcome of a verification, never the submitted code.
package logging

// Package api implements the HTTP API and WebSocket stream for LockGuard Core.
//
// This package provides:
//   - Manual lock control for the caller's own lock
//   - Access code rotation
//   - Daily motion, access and intrusion history
//   - A WebSocket stream of the caller's live lock events
//   - Health and Prometheus metrics endpoints
//
// # Security
//
// Every lock route requires a bearer JWT issued by the account service.
// The token subject is the caller's identity and the only identity a
// request can act on; there is no identity parameter anywhere in the API.
// The WebSocket takes the same token in the token query parameter because
// browsers cannot set headers on an upgrade request.
//
// # Graceful Degradation
//
// The server keeps serving history and health while the broker is down.
// Manual control answers 503 until the MQTT connection returns.
package api

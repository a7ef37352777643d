package influxdb

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementMotion    = "pir"
	MeasurementAccess    = "access_attempt"
	MeasurementIntrusion = "intrusion"
)

// dateLayout formats the date tag so dashboards can group by UTC day.
const dateLayout = "2006-01-02"

// RecordMotion writes a PIR reading.
//
// Parameters:
//   - ctx: Unused; the write is queued without blocking
//   - identity: Lock owner, stored as the identity tag
//   - value: Reading as published by the lock
//   - at: Time the reading arrived
//
// Returns:
//   - error: ErrNotConnected after Close
func (c *Client) RecordMotion(_ context.Context, identity string, value int, at time.Time) error {
	return c.writePoint(MeasurementMotion, identity, map[string]any{"value": value}, at)
}

// RecordAccessAttempt writes the outcome of a code submission.
func (c *Client) RecordAccessAttempt(_ context.Context, identity string, success bool, at time.Time) error {
	return c.writePoint(MeasurementAccess, identity, map[string]any{"success": success}, at)
}

// RecordIntrusion writes an intrusion signal.
func (c *Client) RecordIntrusion(_ context.Context, identity string, at time.Time) error {
	return c.writePoint(MeasurementIntrusion, identity, map[string]any{"count": 1}, at)
}

func (c *Client) writePoint(measurement, identity string, fields map[string]any, at time.Time) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	c.writer.WritePoint(newPoint(measurement, identity, fields, at))
	return nil
}

// newPoint tags a point with its identity and UTC date.
func newPoint(measurement, identity string, fields map[string]any, at time.Time) *write.Point {
	at = at.UTC()
	return write.NewPoint(
		measurement,
		map[string]string{
			"identity": identity,
			"date":     at.Format(dateLayout),
		},
		fields,
		at,
	)
}

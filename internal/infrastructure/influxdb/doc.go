// Package influxdb records lock activity in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library and is one of the
// relay's event sinks, alongside the SQLite device_events log. Every point
// carries two tags, identity and date (UTC, YYYY-MM-DD), so per-lock daily
// dashboards need no further processing:
//
//	pir            value=<int>
//	access_attempt success=<bool>
//	intrusion      count=1
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // optional sink; carry on without it
//	}
//	defer client.Close()
//
//	client.RecordMotion(ctx, "alice", 1, time.Now())
//
// # Error Handling
//
// Writes are batched and non-blocking. Record methods only fail once the
// client is closed; delivery failures arrive later through SetOnError.
package influxdb

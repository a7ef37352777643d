// Package audit keeps the local log of lock activity in the device_events
// table: motion readings, access attempts and intrusion signals.
//
// Entries are append-only and keyed by identity and UTC day, which is also
// how the dashboard reads them back. Writes come from the relay and are
// best-effort; a failed insert is logged there and never affects the lock.
package audit

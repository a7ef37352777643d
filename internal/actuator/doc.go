// Package actuator publishes lock commands to a single identity's topics.
//
// Every sequence goes to exactly one identity's namespace. Commands are
// issued in order (indicator, audible cue, latch) so the LED changes before
// the buzzer sounds on real hardware, but a failed publish never stops the
// commands after it.
//
//	Granted:  led=green  buzzer=buzzer_success  servo=open
//	Denied:   led=red    buzzer=buzzer_fail
//
// Manual control is trusted: the caller has already attached a verified
// identity, and this package performs no authorization.
package actuator

// Package alert notifies a lock owner about a suspected intrusion.
//
// A lock raises an intrusion by publishing "1" on {identity}/esp32/notify.
// The Dispatcher then tries two channels at the same time:
//
//   - email to the owner's registered address (SMTP via go-mail)
//   - a push notification through an HTTP gateway
//
// Each channel is attempted exactly once. A failure in one never prevents
// the other, and neither failure is reported back to the lock. An owner
// without an email address still gets the push.
package alert

package alert

import "errors"

var (
	// ErrNoEmail means the identity has no registered address.
	ErrNoEmail = errors.New("alert: no email registered")

	// ErrChannelDisabled means the channel is not configured.
	ErrChannelDisabled = errors.New("alert: channel disabled")

	// ErrEmailFailed wraps SMTP delivery failures.
	ErrEmailFailed = errors.New("alert: email delivery failed")

	// ErrPushFailed wraps push gateway failures.
	ErrPushFailed = errors.New("alert: push delivery failed")
)

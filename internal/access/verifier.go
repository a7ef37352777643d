// Package access decides whether a submitted access code opens a lock.
package access

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/nerrad567/lockguard-core/internal/user"
)

// Reason explains a verification outcome. It is safe to log and record.
type Reason string

const (
	ReasonGranted         Reason = "granted"
	ReasonCodeMismatch    Reason = "code_mismatch"
	ReasonUnknownIdentity Reason = "unknown_identity"
	ReasonEmptyCode       Reason = "empty_code"
	ReasonNoCodeSet       Reason = "no_code_set"
	ReasonStoreError      Reason = "store_error"
)

// Result is the outcome of one verification. It is computed once per
// attempt and drives both the actuator commands and the event record.
type Result struct {
	Identity string
	Granted  bool
	Reason   Reason

	// Err carries the store failure when Reason is ReasonStoreError.
	Err error
}

// CodeSource yields the current access code for an identity.
// user.Repository satisfies it.
type CodeSource interface {
	AccessCode(ctx context.Context, identity string) (string, error)
}

// Verifier checks submitted codes against the credential store.
//
// The stored code is fetched on every call so a rotation applies to the
// next attempt. Every failure path denies access.
type Verifier struct {
	codes CodeSource
}

// NewVerifier creates a Verifier backed by codes.
func NewVerifier(codes CodeSource) *Verifier {
	return &Verifier{codes: codes}
}

// Verify compares submitted against the identity's stored code.
//
// The comparison is an exact, constant-time match with no hashing or
// trimming: the code is an operational PIN typed on the lock keypad.
func (v *Verifier) Verify(ctx context.Context, identity, submitted string) Result {
	res := Result{Identity: identity}

	if submitted == "" {
		res.Reason = ReasonEmptyCode
		return res
	}

	stored, err := v.codes.AccessCode(ctx, identity)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		res.Reason = ReasonUnknownIdentity
		return res
	case err != nil:
		res.Reason = ReasonStoreError
		res.Err = err
		return res
	case stored == "":
		res.Reason = ReasonNoCodeSet
		return res
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		res.Reason = ReasonCodeMismatch
		return res
	}

	res.Granted = true
	res.Reason = ReasonGranted
	return res
}

package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/lockguard-core/internal/actuator"
	"github.com/nerrad567/lockguard-core/internal/user"
)

type lockControlRequest struct {
	Action string `json:"action" validate:"required,oneof=open close"`
}

type accessCodeRequest struct {
	AccessCode string `json:"access_code" validate:"required,len=6"`
}

// handleLockControl opens or closes the caller's lock.
//
// The identity comes from the token only, so a caller can never address
// another identity's lock.
func (s *Server) handleLockControl(w http.ResponseWriter, r *http.Request) {
	var req lockControlRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	identity := identityFromContext(r.Context())
	action := actuator.Action(req.Action)

	if err := s.lock.ManualControl(identity, action); err != nil {
		s.logger.Warn("manual lock control failed",
			"identity", identity, "action", action, "error", err)
		writeUnavailable(w, "lock commands could not be delivered")
		return
	}

	s.logger.Info("manual lock control", "identity", identity, "action", action)
	writeJSON(w, http.StatusOK, map[string]string{
		"identity": identity,
		"action":   string(action),
		"status":   "sent",
	})
}

// handleRotateAccessCode replaces the caller's access code. The next
// submission on the lock is checked against the new code.
func (s *Server) handleRotateAccessCode(w http.ResponseWriter, r *http.Request) {
	var req accessCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	identity := identityFromContext(r.Context())

	err := s.codes.UpdateAccessCode(r.Context(), identity, req.AccessCode)
	switch {
	case errors.Is(err, user.ErrInvalidAccessCode):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	case errors.Is(err, user.ErrUserNotFound):
		writeNotFound(w, "no lock registered for this account")
		return
	case err != nil:
		s.logger.Error("access code rotation failed", "identity", identity, "error", err)
		writeInternalError(w, "failed to update access code")
		return
	}

	// The identity exists, so make sure its lock is being listened to.
	if s.relay != nil {
		if err := s.relay.Track(identity); err != nil {
			s.logger.Warn("tracking identity failed", "identity", identity, "error", err)
		}
	}

	s.logger.Info("access code rotated", "identity", identity)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

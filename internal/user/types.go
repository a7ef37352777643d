package user

import (
	"time"
	"unicode/utf8"
)

// AccessCodeLength is the fixed length of an access code.
const AccessCodeLength = 6

// User is one registered lock owner.
type User struct {
	Identity   string    `json:"identity"`
	Email      string    `json:"email,omitempty"`
	AccessCode string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidateAccessCode checks a code proposed for storage.
// Length is counted in characters, not bytes.
func ValidateAccessCode(code string) error {
	if utf8.RuneCountInString(code) != AccessCodeLength {
		return ErrInvalidAccessCode
	}
	return nil
}

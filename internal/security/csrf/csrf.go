// Package csrf issues and checks the per-session anti-forgery token that
// every state-changing form must carry.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"github.com/sillygoals/sillygoals/internal/session"
)

// ErrInvalid is returned when the submitted token is missing or does not
// match the session's token. Callers treat it as an authorization
// failure and must not perform any mutation.
var ErrInvalid = errors.New("csrf: token missing or mismatched")

// FormField is the form field name templates use for the token.
const FormField = "csrftoken"

var tokenValue = session.NewValue[string]("csrf_token")

// GetOrCreate returns the session's CSRF token, minting and persisting
// one on first use. The token never rotates within a session.
func GetOrCreate(s *session.Session) (string, error) {
	token, ok, err := tokenValue.Get(s)
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}

	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	token = base64.StdEncoding.EncodeToString(b[:])
	if err := tokenValue.Save(s, token); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyFromSession checks the submitted token against the session's.
// The comparison is exact (no normalization). Absence, corruption and
// mismatch all collapse to ErrInvalid so the failure mode leaks nothing.
func VerifyFromSession(s *session.Session, submitted string) error {
	token, ok, err := tokenValue.Get(s)
	if err != nil || !ok || submitted == "" {
		return ErrInvalid
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
		return ErrInvalid
	}
	return nil
}

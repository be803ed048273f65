package auth

import (
	"github.com/sillygoals/sillygoals/internal/security/otp"
	"github.com/sillygoals/sillygoals/internal/session"
)

// Flow markers. Each pending flow leaves its target and code in the
// session between the start and finish steps. Names are stable because
// stored sessions outlive deploys.
var (
	codeValue              = session.NewValue[otp.Code]("login_code")
	registrationEmailValue = session.NewValue[string]("registration_email")
	loginEmailValue        = session.NewValue[string]("login_email")
	changeEmailValue       = session.NewValue[string]("change_email")
)

// PendingLoginEmail returns the address recorded by StartLogin, if a
// login is pending. The passkey ceremony uses it to pick which user's
// credentials to challenge.
func PendingLoginEmail(sess *session.Session) (string, bool) {
	addr, ok, err := loginEmailValue.Get(sess)
	if err != nil {
		return "", false
	}
	return addr, ok
}

// ClearPendingLoginEmail drops the recorded login target once a passkey
// ceremony has claimed it.
func ClearPendingLoginEmail(sess *session.Session) {
	loginEmailValue.Remove(sess)
}

// clearFlowMarkers removes every pending-flow marker. Starting any flow
// calls this first so a half-finished registration cannot leak into a
// login and vice versa. The identity and CSRF token are untouched.
func clearFlowMarkers(sess *session.Session) {
	codeValue.Remove(sess)
	registrationEmailValue.Remove(sess)
	loginEmailValue.Remove(sess)
	changeEmailValue.Remove(sess)
}

package webauthn

import (
	"encoding/json"

	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/sillygoals/sillygoals/internal/observability/logger"
	"github.com/sillygoals/sillygoals/internal/store"
)

// waUser adapts a stored user and their credentials to the
// webauthn.User interface. The user handle is the public id's raw
// bytes, so credentials stay valid if the email changes.
type waUser struct {
	user  *store.User
	creds []webauthn.Credential
}

func newWAUser(user *store.User, stored []store.Credential) *waUser {
	creds := make([]webauthn.Credential, 0, len(stored))
	for _, c := range stored {
		var cred webauthn.Credential
		if err := json.Unmarshal(c.Passkey, &cred); err != nil {
			logger.L().Warn("skipping undecodable passkey",
				logger.Component("webauthn"),
				logger.String("credential_id", c.ID.String()),
				logger.Err(err))
			continue
		}
		creds = append(creds, cred)
	}
	return &waUser{user: user, creds: creds}
}

func (u *waUser) WebAuthnID() []byte {
	id := u.user.PublicID
	return id[:]
}

func (u *waUser) WebAuthnName() string                       { return u.user.Email }
func (u *waUser) WebAuthnDisplayName() string                { return u.user.DisplayName() }
func (u *waUser) WebAuthnCredentials() []webauthn.Credential { return u.creds }

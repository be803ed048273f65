// Package auth implements the passwordless login flows: emailed
// one-time codes for registration and login, the logged-in identity
// kept in the session, and email changes for existing accounts.
//
// The flows never reveal whether an email is registered. Both branches
// of registration and login render the same page; the difference lives
// only in which mail goes out.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sillygoals/sillygoals/internal/observability/logger"
	"github.com/sillygoals/sillygoals/internal/session"
	"github.com/sillygoals/sillygoals/internal/store"
)

var (
	// ErrUnauthorized means no valid logged-in identity is attached to
	// the session.
	ErrUnauthorized = errors.New("auth: not logged in")

	// ErrFlowExpired means a finish step ran without its start step's
	// session markers, e.g. after the session expired or a cross-flow
	// switch cleared them.
	ErrFlowExpired = errors.New("auth: flow expired")

	// ErrInvalidCode means the submitted one-time code did not match or
	// had expired. The stored code is kept so the user can retry.
	ErrInvalidCode = errors.New("auth: invalid code")

	// ErrEmailTaken means the requested new address already belongs to
	// an account.
	ErrEmailTaken = errors.New("auth: email not available")
)

// identityValue holds the public id of the logged-in user. Its absence
// is the anonymous state.
var identityValue = session.NewValue[uuid.UUID]("identity")

// Identity is the session's authentication state: anonymous, or
// authenticated as one user.
type Identity struct {
	userID uuid.UUID
	authed bool
}

func Anonymous() Identity                    { return Identity{} }
func Authenticated(id uuid.UUID) Identity    { return Identity{userID: id, authed: true} }
func (i Identity) Authenticated() bool       { return i.authed }
func (i Identity) UserID() (uuid.UUID, bool) { return i.userID, i.authed }

// Resolver turns the session identity into a stored user.
type Resolver struct {
	users store.Users
}

func NewResolver(users store.Users) *Resolver {
	return &Resolver{users: users}
}

// Identify reads the session's identity. A corrupt slot reads as
// anonymous and is dropped so the session recovers on the next login.
func (r *Resolver) Identify(sess *session.Session) Identity {
	id, ok, err := identityValue.Get(sess)
	if err != nil {
		identityValue.Remove(sess)
		return Anonymous()
	}
	if !ok {
		return Anonymous()
	}
	return Authenticated(id)
}

// CurrentUser resolves the logged-in user, or ErrUnauthorized. An
// identity pointing at a deleted account also reads as unauthorized and
// clears the stale slot.
func (r *Resolver) CurrentUser(ctx context.Context, sess *session.Session) (*store.User, error) {
	id, ok := r.Identify(sess).UserID()
	if !ok {
		return nil, ErrUnauthorized
	}
	u, err := r.users.ByPublicID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		logger.From(ctx).Warn("session identity points at missing user", logger.UserID(id.String()))
		identityValue.Remove(sess)
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Package webauthn runs the passkey ceremonies. Registration adds a
// passkey to the logged-in account; login authenticates the user a
// pending code login already named, so the assertion can never swap in
// a different account.
package webauthn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"

	"github.com/sillygoals/sillygoals/internal/auth"
	"github.com/sillygoals/sillygoals/internal/observability/logger"
	"github.com/sillygoals/sillygoals/internal/session"
	"github.com/sillygoals/sillygoals/internal/store"
)

// ErrNoCeremony means a finish step ran without its start step's
// session state, or a login ceremony started without a pending login.
var ErrNoCeremony = errors.New("webauthn: no pending ceremony")

var (
	regStateValue  = session.NewValue[webauthn.SessionData]("reg_stage")
	authStateValue = session.NewValue[authState]("auth_state")
)

// authState binds an in-flight login ceremony to the user the code
// flow named. Finish authenticates this user and nobody else.
type authState struct {
	UserID      uuid.UUID            `json:"userid"`
	SessionData webauthn.SessionData `json:"passkey_auth"`
}

// Config carries the relying-party settings.
type Config struct {
	RPID          string
	RPDisplayName string
	Origin        string
}

// Coordinator wires the go-webauthn library to the session and store.
type Coordinator struct {
	wa    *webauthn.WebAuthn
	users store.Users
	creds store.Credentials
	flows *auth.Flows
}

func NewCoordinator(cfg Config, users store.Users, creds store.Credentials, flows *auth.Flows) (*Coordinator, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPID:          cfg.RPID,
		RPDisplayName: cfg.RPDisplayName,
		RPOrigins:     []string{cfg.Origin},
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn: %w", err)
	}
	return &Coordinator{wa: wa, users: users, creds: creds, flows: flows}, nil
}

// StartRegistration begins adding a passkey to the logged-in user. Any
// previous in-flight registration is discarded. Existing credentials
// are sent as exclusions so the authenticator refuses duplicates.
func (c *Coordinator) StartRegistration(ctx context.Context, sess *session.Session, user *store.User) (*protocol.CredentialCreation, error) {
	regStateValue.Remove(sess)

	stored, err := c.creds.ByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	wu := newWAUser(user, stored)

	exclusions := make([]protocol.CredentialDescriptor, len(wu.creds))
	for i, cred := range wu.creds {
		exclusions[i] = protocol.CredentialDescriptor{
			Type:         protocol.PublicKeyCredentialType,
			CredentialID: cred.ID,
		}
	}

	options, state, err := c.wa.BeginRegistration(wu, webauthn.WithExclusions(exclusions))
	if err != nil {
		return nil, fmt.Errorf("webauthn: begin registration: %w", err)
	}
	if err := regStateValue.Save(sess, *state); err != nil {
		return nil, err
	}
	return options, nil
}

// FinishRegistration validates the attestation and stores the new
// passkey. The ceremony state is consumed either way; a failed
// attestation requires a fresh start.
func (c *Coordinator) FinishRegistration(ctx context.Context, sess *session.Session, user *store.User, response *protocol.ParsedCredentialCreationData) error {
	state, ok, err := regStateValue.Get(sess)
	if err != nil || !ok {
		return ErrNoCeremony
	}
	regStateValue.Remove(sess)

	cred, err := c.wa.CreateCredential(newWAUser(user, nil), state, response)
	if err != nil {
		return fmt.Errorf("webauthn: finish registration: %w", err)
	}

	passkey, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("webauthn: encode credential: %w", err)
	}
	if err := c.creds.Insert(ctx, store.Credential{
		ID:      uuid.New(),
		UserID:  user.ID,
		Passkey: passkey,
	}); err != nil {
		return err
	}

	logger.From(ctx).Info("passkey registered",
		logger.Component("webauthn"), logger.UserID(user.PublicID.String()))
	return nil
}

// StartLogin begins a passkey login for the user the pending code
// login named. Without that pending login it returns ErrNoCeremony and
// the caller sends the browser back to the login page. The pending
// marker is consumed and any previous ceremony state is overwritten.
func (c *Coordinator) StartLogin(ctx context.Context, sess *session.Session) (*protocol.CredentialAssertion, error) {
	addr, ok := auth.PendingLoginEmail(sess)
	if !ok {
		return nil, ErrNoCeremony
	}

	user, err := c.users.ByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoCeremony
		}
		return nil, err
	}
	stored, err := c.creds.ByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	wu := newWAUser(user, stored)

	options, state, err := c.wa.BeginLogin(wu)
	if err != nil {
		return nil, fmt.Errorf("webauthn: begin login: %w", err)
	}

	auth.ClearPendingLoginEmail(sess)
	if err := authStateValue.Save(sess, authState{
		UserID:      user.PublicID,
		SessionData: *state,
	}); err != nil {
		return nil, err
	}
	return options, nil
}

// FinishLogin validates the assertion against the bound user and logs
// them in. The bound user comes from the session, never from the
// response. Ceremony state is consumed whether or not validation
// succeeds.
func (c *Coordinator) FinishLogin(ctx context.Context, sess *session.Session, response *protocol.ParsedCredentialAssertionData) (*store.User, error) {
	state, ok, err := authStateValue.Get(sess)
	if err != nil || !ok {
		return nil, ErrNoCeremony
	}
	authStateValue.Remove(sess)

	user, err := c.users.ByPublicID(ctx, state.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoCeremony
		}
		return nil, err
	}
	stored, err := c.creds.ByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if _, err := c.wa.ValidateLogin(newWAUser(user, stored), state.SessionData, response); err != nil {
		return nil, fmt.Errorf("webauthn: finish login: %w", err)
	}

	if err := c.flows.EstablishLogin(ctx, sess, user); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("passkey login",
		logger.Component("webauthn"), logger.UserID(user.PublicID.String()))
	return user, nil
}

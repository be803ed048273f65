package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sillygoals/sillygoals/internal/email"
	"github.com/sillygoals/sillygoals/internal/observability/logger"
	"github.com/sillygoals/sillygoals/internal/security/otp"
	"github.com/sillygoals/sillygoals/internal/session"
	"github.com/sillygoals/sillygoals/internal/store"
)

// Mailer sends flow mail without blocking the request.
// *email.Dispatcher is the production implementation.
type Mailer interface {
	Dispatch(ctx context.Context, to, subject, body string)
}

// Flows drives the code-based registration, login and email-change
// flows. All state between steps lives in the session.
type Flows struct {
	users   store.Users
	mail    Mailer
	codeTTL time.Duration
}

func NewFlows(users store.Users, mail Mailer, codeTTL time.Duration) *Flows {
	return &Flows{users: users, mail: mail, codeTTL: codeTTL}
}

// StartRegistration begins registration for the given address. The
// caller renders the same confirmation page whether or not the address
// was already registered; only the outgoing mail differs. A registered
// address gets a notice instead of a code, so no flow markers are set
// for it and the finish step will report an expired flow.
func (f *Flows) StartRegistration(ctx context.Context, sess *session.Session, addr string) error {
	log := logger.From(ctx).With(logger.Op("StartRegistration"))
	addr = normalizeEmail(addr)

	clearFlowMarkers(sess)

	taken, err := f.users.EmailTaken(ctx, addr)
	if err != nil {
		return err
	}
	if taken {
		subject, body := email.AlreadyRegistered()
		f.mail.Dispatch(ctx, addr, subject, body)
		log.Info("registration attempt for existing account")
		return nil
	}

	code := otp.New()
	if err := codeValue.Save(sess, code); err != nil {
		return err
	}
	if err := registrationEmailValue.Save(sess, addr); err != nil {
		return err
	}

	subject, body := email.RegistrationCode(code.String())
	f.mail.Dispatch(ctx, addr, subject, body)
	log.Info("registration code issued")
	return nil
}

// FinishRegistration checks the submitted code and creates the account.
// ErrInvalidCode leaves the stored code in place for a retry;
// ErrFlowExpired means the start step's markers are gone.
func (f *Flows) FinishRegistration(ctx context.Context, sess *session.Session, submitted string) (*store.User, error) {
	log := logger.From(ctx).With(logger.Op("FinishRegistration"))

	addr, code, err := f.pendingCode(sess, registrationEmailValue)
	if err != nil {
		return nil, err
	}
	if !code.Verify(submitted, f.codeTTL) {
		return nil, ErrInvalidCode
	}

	user, err := f.users.Create(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := f.EstablishLogin(ctx, sess, user); err != nil {
		return nil, err
	}
	log.Info("account created", logger.UserID(user.PublicID.String()))
	return user, nil
}

// StartLogin records the login target if the address belongs to an
// account. An unknown address gets a warning mail and no marker, and
// the caller proceeds identically either way.
func (f *Flows) StartLogin(ctx context.Context, sess *session.Session, addr string) error {
	log := logger.From(ctx).With(logger.Op("StartLogin"))
	addr = normalizeEmail(addr)

	clearFlowMarkers(sess)

	user, err := f.users.ByEmail(ctx, addr)
	if errors.Is(err, store.ErrNotFound) {
		subject, body := email.UnknownLoginAttempt()
		f.mail.Dispatch(ctx, addr, subject, body)
		log.Info("login attempt for unknown address")
		return nil
	}
	if err != nil {
		return err
	}
	return loginEmailValue.Save(sess, user.Email)
}

// IssueLoginCode mails a fresh code to the pending login target. When
// no login is pending it does nothing, and the caller still renders the
// code entry page.
func (f *Flows) IssueLoginCode(ctx context.Context, sess *session.Session) error {
	addr, ok, err := loginEmailValue.Get(sess)
	if err != nil || !ok {
		return nil
	}

	code := otp.New()
	if err := codeValue.Save(sess, code); err != nil {
		return err
	}

	subject, body := email.LoginCode(code.String())
	f.mail.Dispatch(ctx, addr, subject, body)
	logger.From(ctx).Info("login code issued", logger.Op("IssueLoginCode"))
	return nil
}

// FinishLogin checks the submitted code and logs the pending user in.
func (f *Flows) FinishLogin(ctx context.Context, sess *session.Session, submitted string) (*store.User, error) {
	log := logger.From(ctx).With(logger.Op("FinishLogin"))

	addr, code, err := f.pendingCode(sess, loginEmailValue)
	if err != nil {
		return nil, err
	}
	if !code.Verify(submitted, f.codeTTL) {
		return nil, ErrInvalidCode
	}

	user, err := f.users.ByEmail(ctx, addr)
	if errors.Is(err, store.ErrNotFound) {
		// Account deleted between steps.
		clearFlowMarkers(sess)
		return nil, ErrFlowExpired
	}
	if err != nil {
		return nil, err
	}
	if err := f.EstablishLogin(ctx, sess, user); err != nil {
		return nil, err
	}
	log.Info("logged in", logger.UserID(user.PublicID.String()))
	return user, nil
}

// StartEmailChange begins changing a logged-in user's address. Unlike
// registration this runs behind a login, so ErrEmailTaken is reported
// directly instead of being hidden.
func (f *Flows) StartEmailChange(ctx context.Context, sess *session.Session, newAddr string) error {
	newAddr = normalizeEmail(newAddr)

	taken, err := f.users.EmailTaken(ctx, newAddr)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}

	code := otp.New()
	if err := codeValue.Save(sess, code); err != nil {
		return err
	}
	if err := changeEmailValue.Save(sess, newAddr); err != nil {
		return err
	}

	subject, body := email.EmailChangeCode(code.String())
	f.mail.Dispatch(ctx, newAddr, subject, body)
	logger.From(ctx).Info("email change code issued", logger.Op("StartEmailChange"))
	return nil
}

// FinishEmailChange checks the submitted code and updates the user's
// address to the pending one.
func (f *Flows) FinishEmailChange(ctx context.Context, sess *session.Session, user *store.User, submitted string) error {
	newAddr, code, err := f.pendingCode(sess, changeEmailValue)
	if err != nil {
		return err
	}
	if !code.Verify(submitted, f.codeTTL) {
		return ErrInvalidCode
	}

	if err := f.users.UpdateEmail(ctx, user.PublicID, newAddr); err != nil {
		return err
	}
	clearFlowMarkers(sess)
	user.Email = newAddr
	logger.From(ctx).Info("email changed", logger.Op("FinishEmailChange"),
		logger.UserID(user.PublicID.String()))
	return nil
}

// EstablishLogin is the single place a session becomes authenticated:
// it stores the identity and clears every pending-flow marker. Code
// login and passkey login both end here.
func (f *Flows) EstablishLogin(ctx context.Context, sess *session.Session, user *store.User) error {
	if err := identityValue.Save(sess, user.PublicID); err != nil {
		return err
	}
	clearFlowMarkers(sess)
	return nil
}

// Logout destroys the session entirely.
func (f *Flows) Logout(sess *session.Session) {
	sess.Destroy()
}

// pendingCode reads a flow's target address and stored code, collapsing
// absent or corrupt markers into ErrFlowExpired.
func (f *Flows) pendingCode(sess *session.Session, target session.Value[string]) (string, otp.Code, error) {
	addr, ok, err := target.Get(sess)
	if err != nil || !ok {
		return "", otp.Code{}, ErrFlowExpired
	}
	code, ok, err := codeValue.Get(sess)
	if err != nil || !ok {
		return "", otp.Code{}, ErrFlowExpired
	}
	return addr, code, nil
}

func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

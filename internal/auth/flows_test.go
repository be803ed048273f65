package auth

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sillygoals/sillygoals/internal/session"
	"github.com/sillygoals/sillygoals/internal/store/memory"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records mail synchronously.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Dispatch(_ context.Context, to, subject, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var codeRE = regexp.MustCompile(`\d{6}`)

func codeFrom(t *testing.T, mail sentMail) string {
	t.Helper()
	code := codeRE.FindString(mail.Body)
	require.NotEmpty(t, code, "no code in mail body %q", mail.Body)
	return code
}

func newTestFlows() (*Flows, *Resolver, *memory.Store, *fakeMailer) {
	st := memory.New()
	mailer := &fakeMailer{}
	return NewFlows(st.Users(), mailer, 15*time.Minute), NewResolver(st.Users()), st, mailer
}

func TestRegistrationHappyPath(t *testing.T) {
	ctx := context.Background()
	flows, resolver, _, mailer := newTestFlows()
	sess := session.New("s")

	require.NoError(t, flows.StartRegistration(ctx, sess, "New@Example.Com"))

	mail := mailer.last(t)
	assert.Equal(t, "new@example.com", mail.To)
	assert.Contains(t, mail.Subject, "Registration Code")

	user, err := flows.FinishRegistration(ctx, sess, codeFrom(t, mail))
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.True(t, user.IsNewUser)

	current, err := resolver.CurrentUser(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, user.PublicID, current.PublicID)

	// flow markers are gone
	_, ok := PendingLoginEmail(sess)
	assert.False(t, ok)
	_, err = flows.FinishRegistration(ctx, sess, codeFrom(t, mail))
	assert.ErrorIs(t, err, ErrFlowExpired)
}

func TestRegistrationWrongCodeKeepsCode(t *testing.T) {
	ctx := context.Background()
	flows, _, _, mailer := newTestFlows()
	sess := session.New("s")

	require.NoError(t, flows.StartRegistration(ctx, sess, "a@example.com"))
	code := codeFrom(t, mailer.last(t))

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err := flows.FinishRegistration(ctx, sess, wrong)
	assert.ErrorIs(t, err, ErrInvalidCode)

	// the stored code is unchanged, a retry with the mailed code works
	user, err := flows.FinishRegistration(ctx, sess, code)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestRegistrationExistingEmailIsIndistinguishable(t *testing.T) {
	ctx := context.Background()
	flows, _, st, mailer := newTestFlows()
	_, err := st.Users().Create(ctx, "taken@example.com")
	require.NoError(t, err)

	sess := session.New("s")
	require.NoError(t, flows.StartRegistration(ctx, sess, "taken@example.com"))

	// a notice goes out instead of a code, and no flow is pending
	mail := mailer.last(t)
	assert.Equal(t, "Silly Goals Registration", mail.Subject)
	assert.NotContains(t, mail.Body, "code")

	_, err = flows.FinishRegistration(ctx, sess, "123456")
	assert.ErrorIs(t, err, ErrFlowExpired)
}

func TestLoginHappyPath(t *testing.T) {
	ctx := context.Background()
	flows, resolver, st, mailer := newTestFlows()
	created, err := st.Users().Create(ctx, "user@example.com")
	require.NoError(t, err)

	sess := session.New("s")
	require.NoError(t, flows.StartLogin(ctx, sess, "USER@example.com"))

	addr, ok := PendingLoginEmail(sess)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", addr)

	require.NoError(t, flows.IssueLoginCode(ctx, sess))
	mail := mailer.last(t)
	assert.Contains(t, mail.Subject, "Login Code")

	user, err := flows.FinishLogin(ctx, sess, codeFrom(t, mail))
	require.NoError(t, err)
	assert.Equal(t, created.PublicID, user.PublicID)

	current, err := resolver.CurrentUser(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, created.PublicID, current.PublicID)
}

func TestLoginUnknownEmailGetsNoticeOnly(t *testing.T) {
	ctx := context.Background()
	flows, _, _, mailer := newTestFlows()
	sess := session.New("s")

	require.NoError(t, flows.StartLogin(ctx, sess, "ghost@example.com"))

	mail := mailer.last(t)
	assert.Equal(t, "Login Attempt at Silly Goals", mail.Subject)

	_, ok := PendingLoginEmail(sess)
	assert.False(t, ok)

	// no pending login: issuing a code is a silent no-op
	before := mailer.count()
	require.NoError(t, flows.IssueLoginCode(ctx, sess))
	assert.Equal(t, before, mailer.count())

	_, err := flows.FinishLogin(ctx, sess, "123456")
	assert.ErrorIs(t, err, ErrFlowExpired)
}

func TestStartingLoginClearsRegistrationFlow(t *testing.T) {
	ctx := context.Background()
	flows, _, _, mailer := newTestFlows()
	sess := session.New("s")

	require.NoError(t, flows.StartRegistration(ctx, sess, "a@example.com"))
	regCode := codeFrom(t, mailer.last(t))

	require.NoError(t, flows.StartLogin(ctx, sess, "a@example.com"))

	_, err := flows.FinishRegistration(ctx, sess, regCode)
	assert.ErrorIs(t, err, ErrFlowExpired)
}

func TestExpiredCodeIsInvalid(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mailer := &fakeMailer{}
	flows := NewFlows(st.Users(), mailer, time.Nanosecond)
	sess := session.New("s")

	require.NoError(t, flows.StartRegistration(ctx, sess, "slow@example.com"))
	code := codeFrom(t, mailer.last(t))

	time.Sleep(time.Millisecond)
	_, err := flows.FinishRegistration(ctx, sess, code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestEmailChange(t *testing.T) {
	ctx := context.Background()
	flows, _, st, mailer := newTestFlows()
	user, err := st.Users().Create(ctx, "old@example.com")
	require.NoError(t, err)
	_, err = st.Users().Create(ctx, "occupied@example.com")
	require.NoError(t, err)

	sess := session.New("s")

	err = flows.StartEmailChange(ctx, sess, "occupied@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)

	require.NoError(t, flows.StartEmailChange(ctx, sess, "new@example.com"))
	mail := mailer.last(t)
	assert.Equal(t, "new@example.com", mail.To)
	assert.Contains(t, mail.Subject, "Confirmation Code")

	require.NoError(t, flows.FinishEmailChange(ctx, sess, user, codeFrom(t, mail)))
	assert.Equal(t, "new@example.com", user.Email)

	stored, err := st.Users().ByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.PublicID, stored.PublicID)
}

func TestLogoutDestroysIdentity(t *testing.T) {
	ctx := context.Background()
	flows, resolver, st, _ := newTestFlows()
	user, err := st.Users().Create(ctx, "user@example.com")
	require.NoError(t, err)

	sess := session.New("s")
	require.NoError(t, flows.EstablishLogin(ctx, sess, user))

	flows.Logout(sess)

	_, err = resolver.CurrentUser(ctx, sess)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolverDeletedUserReadsUnauthorized(t *testing.T) {
	ctx := context.Background()
	flows, resolver, st, _ := newTestFlows()
	user, err := st.Users().Create(ctx, "gone@example.com")
	require.NoError(t, err)

	sess := session.New("s")
	require.NoError(t, flows.EstablishLogin(ctx, sess, user))
	require.NoError(t, st.Users().Delete(ctx, user.PublicID))

	_, err = resolver.CurrentUser(ctx, sess)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, resolver.Identify(sess).Authenticated())
}

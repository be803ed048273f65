package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sillygoals/sillygoals/internal/auth"
	"github.com/sillygoals/sillygoals/internal/session"
	"github.com/sillygoals/sillygoals/internal/store/memory"
	"github.com/sillygoals/sillygoals/internal/webauthn"
)

type recordedMail struct {
	To      string
	Subject string
	Body    string
}

type recordMailer struct {
	mu   sync.Mutex
	sent []recordedMail
}

func (m *recordMailer) Dispatch(_ context.Context, to, subject, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, recordedMail{To: to, Subject: subject, Body: body})
}

func (m *recordMailer) last(t *testing.T) recordedMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

func (m *recordMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newTestApp(t *testing.T) (*httptest.Server, *memory.Store, *recordMailer) {
	t.Helper()

	st := memory.New()
	mailer := &recordMailer{}
	flows := auth.NewFlows(st.Users(), mailer, 15*time.Minute)
	resolver := auth.NewResolver(st.Users())

	passkeys, err := webauthn.NewCoordinator(webauthn.Config{
		RPID:          "127.0.0.1",
		RPDisplayName: "Silly Goals",
		Origin:        "http://127.0.0.1",
	}, st.Users(), st.Credentials(), flows)
	require.NoError(t, err)

	render, err := NewRenderer()
	require.NoError(t, err)

	sessions := session.NewManager(session.NewMemoryStore(time.Hour), session.ManagerOptions{
		CookieName: "sg_session",
		TTL:        time.Hour,
	})

	c := NewControllers(render, flows, resolver, passkeys, st)
	srv := httptest.NewServer(NewRouter(c, sessions))
	t.Cleanup(srv.Close)
	return srv, st, mailer
}

// browser is an http client with a cookie jar that never follows
// redirects, so tests can assert on status and Location directly.
func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := client.PostForm(url, form)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

var (
	csrfTokenRE = regexp.MustCompile(`name="csrftoken" value="([^"]+)"`)
	mailCodeRE  = regexp.MustCompile(`\d{6}`)
)

func csrfFrom(t *testing.T, body string) string {
	t.Helper()
	m := csrfTokenRE.FindStringSubmatch(body)
	require.NotNil(t, m, "no csrf token in page")
	return m[1]
}

func TestRegistrationEndToEnd(t *testing.T) {
	srv, _, mailer := newTestApp(t)
	client := browser(t)

	resp, body := get(t, client, srv.URL+"/register")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := csrfFrom(t, body)

	resp, body = postForm(t, client, srv.URL+"/register", url.Values{
		"csrftoken": {token},
		"email":     {"new@example.com"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/finish-registration")

	mail := mailer.last(t)
	assert.Equal(t, "new@example.com", mail.To)
	code := mailCodeRE.FindString(mail.Body)
	require.NotEmpty(t, code)

	resp, _ = postForm(t, client, srv.URL+"/finish-registration", url.Values{
		"csrftoken": {token},
		"code":      {code},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, body = get(t, client, srv.URL+"/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome to Silly Goals")
	assert.Contains(t, body, "Log out")
}

func TestRegistrationWrongCodeRerenders(t *testing.T) {
	srv, _, mailer := newTestApp(t)
	client := browser(t)

	_, body := get(t, client, srv.URL+"/register")
	token := csrfFrom(t, body)

	postForm(t, client, srv.URL+"/register", url.Values{
		"csrftoken": {token},
		"email":     {"a@example.com"},
	})
	code := mailCodeRE.FindString(mailer.last(t).Body)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	resp, body := postForm(t, client, srv.URL+"/finish-registration", url.Values{
		"csrftoken": {token},
		"code":      {wrong},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Invalid code")

	// the mailed code still works after a wrong guess
	resp, _ = postForm(t, client, srv.URL+"/finish-registration", url.Values{
		"csrftoken": {token},
		"code":      {code},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestCSRFMismatchIsForbidden(t *testing.T) {
	srv, _, mailer := newTestApp(t)
	client := browser(t)

	_, body := get(t, client, srv.URL+"/register")
	csrfFrom(t, body)

	resp, _ := postForm(t, client, srv.URL+"/register", url.Values{
		"csrftoken": {"not-the-token"},
		"email":     {"a@example.com"},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, mailer.count(), "rejected request must not send mail")
}

func TestFinishWithoutFlowRedirects(t *testing.T) {
	srv, _, _ := newTestApp(t)
	client := browser(t)

	_, body := get(t, client, srv.URL+"/login")
	token := csrfFrom(t, body)

	resp, _ := postForm(t, client, srv.URL+"/finish-login", url.Values{
		"csrftoken": {token},
		"code":      {"123456"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestDashboardRequiresLogin(t *testing.T) {
	srv, _, _ := newTestApp(t)
	client := browser(t)

	resp, _ := get(t, client, srv.URL+"/dashboard")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestUnknownLoginLooksLikeKnown(t *testing.T) {
	srv, st, mailer := newTestApp(t)
	_, err := st.Users().Create(context.Background(), "known@example.com")
	require.NoError(t, err)

	var pages [2]string
	for i, addr := range []string{"known@example.com", "ghost@example.com"} {
		client := browser(t)
		_, body := get(t, client, srv.URL+"/login")
		token := csrfFrom(t, body)

		resp, body := postForm(t, client, srv.URL+"/login", url.Values{
			"csrftoken": {token},
			"email":     {addr},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		pages[i] = csrfTokenRE.ReplaceAllString(body, "")
	}

	// the page gives nothing away; only the unknown address owner is
	// notified
	assert.Equal(t, pages[0], pages[1])
	assert.Equal(t, 1, mailer.count())
}

func TestSecurityHeaders(t *testing.T) {
	srv, _, _ := newTestApp(t)

	resp, _ := get(t, browser(t), srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestLogoutEndsSession(t *testing.T) {
	srv, _, mailer := newTestApp(t)
	client := browser(t)

	_, body := get(t, client, srv.URL+"/register")
	token := csrfFrom(t, body)
	postForm(t, client, srv.URL+"/register", url.Values{
		"csrftoken": {token},
		"email":     {"out@example.com"},
	})
	code := mailCodeRE.FindString(mailer.last(t).Body)
	postForm(t, client, srv.URL+"/finish-registration", url.Values{
		"csrftoken": {token},
		"code":      {code},
	})

	resp, _ := get(t, client, srv.URL+"/logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = get(t, client, srv.URL+"/dashboard")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

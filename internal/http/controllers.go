// Package http is the web surface of Silly Goals: middleware, the
// template renderer and the page controllers, wired into a chi router.
package http

import (
	"errors"
	"net/http"

	"github.com/sillygoals/sillygoals/internal/auth"
	"github.com/sillygoals/sillygoals/internal/observability/logger"
	"github.com/sillygoals/sillygoals/internal/security/csrf"
	"github.com/sillygoals/sillygoals/internal/session"
	"github.com/sillygoals/sillygoals/internal/store"
	"github.com/sillygoals/sillygoals/internal/webauthn"
)

// Controllers holds every handler's dependencies.
type Controllers struct {
	render   *Renderer
	flows    *auth.Flows
	resolver *auth.Resolver
	passkeys *webauthn.Coordinator
	st       store.Store
}

func NewControllers(render *Renderer, flows *auth.Flows, resolver *auth.Resolver, passkeys *webauthn.Coordinator, st store.Store) *Controllers {
	return &Controllers{
		render:   render,
		flows:    flows,
		resolver: resolver,
		passkeys: passkeys,
		st:       st,
	}
}

// baseView carries the fields every page template reads.
type baseView struct {
	Title     string
	User      *store.User
	CSRFToken string
	Error     string
}

func (c *Controllers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.From(r.Context()).Error("request failed",
		logger.Path(r.URL.Path), logger.Err(err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// checkCSRF verifies the submitted form token. On failure it responds
// 403 and the handler must return without mutating anything.
func (c *Controllers) checkCSRF(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	if err := csrf.VerifyFromSession(sess, r.PostFormValue(csrf.FormField)); err != nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// currentUser resolves the logged-in user or sends the browser to the
// login page.
func (c *Controllers) currentUser(w http.ResponseWriter, r *http.Request, sess *session.Session) (*store.User, bool) {
	user, err := c.resolver.CurrentUser(r.Context(), sess)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			Redirect(w, r, "/login")
		} else {
			c.serverError(w, r, err)
		}
		return nil, false
	}
	return user, true
}

// optionalUser resolves the logged-in user when there is one; an
// anonymous session is not an error here.
func (c *Controllers) optionalUser(r *http.Request, sess *session.Session) *store.User {
	user, err := c.resolver.CurrentUser(r.Context(), sess)
	if err != nil {
		return nil
	}
	return user
}

// token returns the session's CSRF token, treating mint failure as a
// hard error since no form can render without it.
func (c *Controllers) token(w http.ResponseWriter, r *http.Request, sess *session.Session) (string, bool) {
	t, err := csrf.GetOrCreate(sess)
	if err != nil {
		c.serverError(w, r, err)
		return "", false
	}
	return t, true
}

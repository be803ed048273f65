package http

import (
	"errors"
	"net/http"

	"github.com/sillygoals/sillygoals/internal/auth"
	"github.com/sillygoals/sillygoals/internal/session"
)

func sessionFrom(r *http.Request) *session.Session {
	return session.FromContext(r.Context())
}

// Register shows the email form, or sends an already-logged-in user to
// their profile.
func (c *Controllers) Register(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if c.resolver.Identify(sess).Authenticated() {
		Redirect(w, r, "/profile")
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}
	c.render.Page(w, r, http.StatusOK, "register", baseView{
		Title:     "Register . Silly Goals",
		CSRFToken: token,
	})
}

// PostRegister takes the email and renders the code form. The page is
// identical whether or not the address was already registered.
func (c *Controllers) PostRegister(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !c.checkCSRF(w, r, sess) {
		return
	}

	if err := c.flows.StartRegistration(r.Context(), sess, r.PostFormValue("email")); err != nil {
		c.serverError(w, r, err)
		return
	}

	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}
	c.render.Page(w, r, http.StatusOK, "register_finish", baseView{
		Title:     "Register . Silly Goals",
		CSRFToken: token,
	})
}

// FinishRegistration checks the emailed code and creates the account.
func (c *Controllers) FinishRegistration(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !c.checkCSRF(w, r, sess) {
		return
	}

	_, err := c.flows.FinishRegistration(r.Context(), sess, r.PostFormValue("code"))
	switch {
	case errors.Is(err, auth.ErrFlowExpired):
		Redirect(w, r, "/register")
	case errors.Is(err, auth.ErrInvalidCode):
		token, ok := c.token(w, r, sess)
		if !ok {
			return
		}
		c.render.Page(w, r, http.StatusOK, "register_finish", baseView{
			Title:     "Register . Silly Goals",
			CSRFToken: token,
			Error:     "Invalid code",
		})
	case err != nil:
		c.serverError(w, r, err)
	default:
		Redirect(w, r, "/dashboard")
	}
}

// Login shows the email form.
func (c *Controllers) Login(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if c.resolver.Identify(sess).Authenticated() {
		Redirect(w, r, "/dashboard")
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}
	c.render.Page(w, r, http.StatusOK, "login", baseView{
		Title:     "Login . Silly Goals",
		CSRFToken: token,
	})
}

// PostLogin takes the email and offers the login methods. An unknown
// address gets the same page; only the outgoing mail differs.
func (c *Controllers) PostLogin(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !c.checkCSRF(w, r, sess) {
		return
	}

	if err := c.flows.StartLogin(r.Context(), sess, r.PostFormValue("email")); err != nil {
		c.serverError(w, r, err)
		return
	}
	c.render.Page(w, r, http.StatusOK, "login_select", baseView{
		Title: "Login . Silly Goals",
	})
}

// LoginWithCode mails a code to the pending login target and shows the
// code form. With no pending login the form still renders; submitting
// it will bounce back to /login.
func (c *Controllers) LoginWithCode(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := c.flows.IssueLoginCode(r.Context(), sess); err != nil {
		c.serverError(w, r, err)
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}
	c.render.Page(w, r, http.StatusOK, "login_finish", baseView{
		Title:     "Login . Silly Goals",
		CSRFToken: token,
	})
}

// FinishLogin checks the emailed code and logs the user in.
func (c *Controllers) FinishLogin(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !c.checkCSRF(w, r, sess) {
		return
	}

	_, err := c.flows.FinishLogin(r.Context(), sess, r.PostFormValue("code"))
	switch {
	case errors.Is(err, auth.ErrFlowExpired):
		Redirect(w, r, "/login")
	case errors.Is(err, auth.ErrInvalidCode):
		token, ok := c.token(w, r, sess)
		if !ok {
			return
		}
		c.render.Page(w, r, http.StatusOK, "login_finish", baseView{
			Title:     "Login . Silly Goals",
			CSRFToken: token,
			Error:     "Invalid code",
		})
	case err != nil:
		c.serverError(w, r, err)
	default:
		Redirect(w, r, "/dashboard")
	}
}

// Logout destroys the session and goes home.
func (c *Controllers) Logout(w http.ResponseWriter, r *http.Request) {
	c.flows.Logout(sessionFrom(r))
	Redirect(w, r, "/")
}

package http

import (
	"errors"
	"net/http"

	"github.com/sillygoals/sillygoals/internal/auth"
)

func (c *Controllers) Profile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}
	c.render.Page(w, r, http.StatusOK, "profile", baseView{
		Title:     "Profile . Silly Goals",
		User:      user,
		CSRFToken: token,
	})
}

// DeleteProfile removes the account and everything under it, then
// destroys the session.
func (c *Controllers) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}

	if err := c.st.Users().Delete(r.Context(), user.PublicID); err != nil {
		c.serverError(w, r, err)
		return
	}
	c.flows.Logout(sess)
	Redirect(w, r, "/")
}

func (c *Controllers) ProfileEditName(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}
	c.render.Page(w, r, http.StatusOK, "profile_edit_name", baseView{
		Title:     "Profile . Silly Goals",
		User:      user,
		CSRFToken: token,
	})
}

func (c *Controllers) PostProfileEditName(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}

	if err := c.st.Users().UpdateName(r.Context(), user.PublicID, r.PostFormValue("name")); err != nil {
		c.serverError(w, r, err)
		return
	}
	TriggerNotification(w, "Saved", "Your name was updated", NotifySuccess, true)
	Redirect(w, r, "/profile")
}

func (c *Controllers) ProfileEditEmail(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}
	c.render.Page(w, r, http.StatusOK, "profile_edit_email", baseView{
		Title:     "Profile . Silly Goals",
		User:      user,
		CSRFToken: token,
	})
}

// PostProfileEditEmail starts the email change: a code goes to the new
// address and the confirm form renders. This runs behind a login, so a
// taken address is reported directly.
func (c *Controllers) PostProfileEditEmail(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}

	err := c.flows.StartEmailChange(r.Context(), sess, r.PostFormValue("email"))
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		c.render.Page(w, r, http.StatusOK, "profile_edit_email", baseView{
			Title:     "Profile . Silly Goals",
			User:      user,
			CSRFToken: token,
			Error:     "Email is not available",
		})
	case err != nil:
		c.serverError(w, r, err)
	default:
		c.render.Page(w, r, http.StatusOK, "profile_confirm_email", baseView{
			Title:     "Profile . Silly Goals",
			User:      user,
			CSRFToken: token,
		})
	}
}

// PostProfileConfirmEmail checks the code and applies the new address.
func (c *Controllers) PostProfileConfirmEmail(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}

	err := c.flows.FinishEmailChange(r.Context(), sess, user, r.PostFormValue("code"))
	switch {
	case errors.Is(err, auth.ErrFlowExpired):
		Redirect(w, r, "/profile/edit/email")
	case errors.Is(err, auth.ErrInvalidCode):
		token, ok := c.token(w, r, sess)
		if !ok {
			return
		}
		c.render.Page(w, r, http.StatusOK, "profile_confirm_email", baseView{
			Title:     "Profile . Silly Goals",
			User:      user,
			CSRFToken: token,
			Error:     "Invalid code",
		})
	case err != nil:
		c.serverError(w, r, err)
	default:
		TriggerNotification(w, "Saved", "Your email was updated", NotifySuccess, true)
		Redirect(w, r, "/profile")
	}
}

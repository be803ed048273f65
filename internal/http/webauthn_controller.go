package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-webauthn/webauthn/protocol"

	"github.com/sillygoals/sillygoals/internal/webauthn"
)

// The passkey endpoints speak JSON with the browser glue in
// passkeys.js. GETs return ceremony options, POSTs take the
// authenticator response.

func (c *Controllers) BeginPasskeyRegistration(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}

	options, err := c.passkeys.StartRegistration(r.Context(), sess, user)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

func (c *Controllers) FinishPasskeyRegistration(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}

	response, err := protocol.ParseCredentialCreationResponseBody(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	err = c.passkeys.FinishRegistration(r.Context(), sess, user, response)
	switch {
	case errors.Is(err, webauthn.ErrNoCeremony):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	case err != nil:
		c.serverError(w, r, err)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (c *Controllers) BeginPasskeyLogin(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	options, err := c.passkeys.StartLogin(r.Context(), sess)
	switch {
	case errors.Is(err, webauthn.ErrNoCeremony):
		Redirect(w, r, "/login")
	case err != nil:
		c.serverError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, options)
	}
}

func (c *Controllers) FinishPasskeyLogin(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	response, err := protocol.ParseCredentialRequestResponseBody(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err = c.passkeys.FinishLogin(r.Context(), sess, response)
	switch {
	case errors.Is(err, webauthn.ErrNoCeremony):
		Redirect(w, r, "/login")
	case err != nil:
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

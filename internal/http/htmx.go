package http

import (
	"encoding/json"
	"net/http"
)

// IsHtmx reports whether the request came from an htmx swap rather
// than a full page navigation.
func IsHtmx(r *http.Request) bool {
	return r.Header.Get("HX-Request") != ""
}

// NotificationVariant selects the toast style.
type NotificationVariant string

const (
	NotifySuccess NotificationVariant = "success"
	NotifyFailure NotificationVariant = "failure"
)

type notificationEvent struct {
	Title    string              `json:"title"`
	Message  string              `json:"message"`
	Variant  NotificationVariant `json:"variant"`
	AutoHide bool                `json:"autoHide"`
}

// TriggerNotification sets the HX-Trigger-After-Swap header so the
// frontend shows a toast once the swap settles.
func TriggerNotification(w http.ResponseWriter, title, message string, variant NotificationVariant, autoHide bool) {
	payload, err := json.Marshal(map[string]notificationEvent{
		"notify": {Title: title, Message: message, Variant: variant, AutoHide: autoHide},
	})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger-After-Swap", string(payload))
}

// Redirect sends the browser to url. For htmx requests a client-side
// HX-Redirect replaces the 303 so the full page navigates instead of
// the swap target.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHtmx(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

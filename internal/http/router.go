package http

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sillygoals/sillygoals/internal/session"
)

//go:embed static
var staticFiles embed.FS

// NewRouter assembles the middleware chain and every route.
func NewRouter(c *Controllers, sessions *session.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(WithRequestID)
	r.Use(WithLogging)
	r.Use(WithRecover)
	r.Use(WithSecurityHeaders)
	r.Use(WithMetrics)
	r.Use(sessions.Middleware)

	static, _ := fs.Sub(staticFiles, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", c.Home)
	r.Get("/about", c.About)

	r.Get("/register", c.Register)
	r.Post("/register", c.PostRegister)
	r.Post("/finish-registration", c.FinishRegistration)
	r.Get("/login", c.Login)
	r.Post("/login", c.PostLogin)
	r.Get("/login-code", c.LoginWithCode)
	r.Post("/finish-login", c.FinishLogin)
	r.Get("/logout", c.Logout)

	r.Get("/webauthn/register", c.BeginPasskeyRegistration)
	r.Post("/webauthn/register", c.FinishPasskeyRegistration)
	r.Get("/webauthn/login", c.BeginPasskeyLogin)
	r.Post("/webauthn/login", c.FinishPasskeyLogin)

	r.Get("/profile", c.Profile)
	r.Post("/profile/delete", c.DeleteProfile)
	r.Get("/profile/edit/name", c.ProfileEditName)
	r.Post("/profile/edit/name", c.PostProfileEditName)
	r.Get("/profile/edit/email", c.ProfileEditEmail)
	r.Post("/profile/edit/email", c.PostProfileEditEmail)
	r.Post("/profile/edit/email/confirm", c.PostProfileConfirmEmail)

	r.Get("/dashboard", c.Dashboard)
	r.Get("/groups/new", c.NewGroup)
	r.Post("/groups/new", c.PostNewGroup)
	r.Get("/groups/{id}", c.GetGroup)
	r.Get("/groups/{id}/edit", c.EditGroup)
	r.Post("/groups/{id}/edit", c.PostEditGroup)
	r.Post("/groups/{id}/delete", c.DeleteGroup)
	r.Get("/groups/{id}/goals/new", c.NewGoal)
	r.Post("/groups/{id}/goals/new", c.PostNewGoal)
	r.Get("/groups/{id}/goals/{goalID}", c.GetGoal)
	r.Get("/groups/{id}/goals/{goalID}/edit", c.EditGoal)
	r.Post("/groups/{id}/goals/{goalID}/edit", c.PostEditGoal)
	r.Post("/groups/{id}/goals/{goalID}/delete", c.DeleteGoal)
	r.Patch("/groups/{id}/goals/{goalID}/stage", c.PatchGoalStage)

	return r
}

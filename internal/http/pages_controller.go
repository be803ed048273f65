package http

import "net/http"

func (c *Controllers) Home(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	c.render.Page(w, r, http.StatusOK, "home", baseView{
		Title: "Silly Goals",
		User:  c.optionalUser(r, sess),
	})
}

func (c *Controllers) About(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	c.render.Page(w, r, http.StatusOK, "about", baseView{
		Title: "About . Silly Goals",
		User:  c.optionalUser(r, sess),
	})
}

package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sillygoals/sillygoals/internal/store"
)

type dashboardView struct {
	baseView
	Greeting string
	Groups   []store.Group
}

type groupView struct {
	baseView
	Group *store.GroupWithTone
	Goals []store.Goal
}

type groupFormView struct {
	baseView
	Group  *store.Group
	Tones  []store.Tone
	Action string
}

type goalView struct {
	baseView
	Group *store.GroupWithTone
	Goal  *store.Goal
}

type goalFormView struct {
	baseView
	Group  *store.GroupWithTone
	Goal   *store.Goal
	Action string
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// Dashboard lists the user's goal groups. A fresh account gets a first
// time greeting once and the new flag is cleared.
func (c *Controllers) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}

	groups, err := c.st.Groups().ForUser(r.Context(), user.ID)
	if err != nil {
		c.serverError(w, r, err)
		return
	}

	greeting := fmt.Sprintf("Welcome back, %s!", user.DisplayName())
	if user.IsNewUser {
		greeting = "Welcome to Silly Goals! Make a group to get started."
		if err := c.st.Users().ClearNewFlag(r.Context(), user.ID); err != nil {
			c.serverError(w, r, err)
			return
		}
	}

	c.render.Page(w, r, http.StatusOK, "dashboard", dashboardView{
		baseView: baseView{Title: "Dashboard . Silly Goals", User: user},
		Greeting: greeting,
		Groups:   groups,
	})
}

func (c *Controllers) NewGroup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}

	tones, err := c.st.Tones().ForUser(r.Context(), user.ID)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	c.render.Page(w, r, http.StatusOK, "group_form", groupFormView{
		baseView: baseView{Title: "New Group . Silly Goals", User: user, CSRFToken: token},
		Tones:    tones,
		Action:   "/groups/new",
	})
}

func (c *Controllers) PostNewGroup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}

	group, ok := c.groupFromForm(w, r, user)
	if !ok {
		return
	}
	id, err := c.st.Groups().Create(r.Context(), *group)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	Redirect(w, r, fmt.Sprintf("/groups/%d", id))
}

func (c *Controllers) GetGroup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}

	group, ok := c.loadGroup(w, r, user)
	if !ok {
		return
	}
	goals, err := c.st.Goals().ForGroup(r.Context(), group.ID)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	c.render.Page(w, r, http.StatusOK, "group", groupView{
		baseView: baseView{Title: group.Title + " . Silly Goals", User: user, CSRFToken: token},
		Group:    group,
		Goals:    goals,
	})
}

func (c *Controllers) EditGroup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}

	group, ok := c.loadGroup(w, r, user)
	if !ok {
		return
	}
	tones, err := c.st.Tones().ForUser(r.Context(), user.ID)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	c.render.Page(w, r, http.StatusOK, "group_form", groupFormView{
		baseView: baseView{Title: "Edit Group . Silly Goals", User: user, CSRFToken: token},
		Group:    &group.Group,
		Tones:    tones,
		Action:   fmt.Sprintf("/groups/%d/edit", group.ID),
	})
}

func (c *Controllers) PostEditGroup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	group, ok := c.groupFromForm(w, r, user)
	if !ok {
		return
	}
	group.ID = id
	if err := c.st.Groups().Update(r.Context(), *group); err != nil {
		c.storeError(w, r, err)
		return
	}
	Redirect(w, r, fmt.Sprintf("/groups/%d", id))
}

func (c *Controllers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := c.st.Groups().Delete(r.Context(), user.ID, id); err != nil {
		c.storeError(w, r, err)
		return
	}
	Redirect(w, r, "/dashboard")
}

func (c *Controllers) NewGoal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}

	group, ok := c.loadGroup(w, r, user)
	if !ok {
		return
	}
	c.render.Page(w, r, http.StatusOK, "goal_form", goalFormView{
		baseView: baseView{Title: "New Goal . Silly Goals", User: user, CSRFToken: token},
		Group:    group,
		Action:   fmt.Sprintf("/groups/%d/goals/new", group.ID),
	})
}

func (c *Controllers) PostNewGoal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}

	group, ok := c.loadGroup(w, r, user)
	if !ok {
		return
	}
	goal, ok := c.goalFromForm(w, r, group)
	if !ok {
		return
	}
	if _, err := c.st.Goals().Create(r.Context(), *goal); err != nil {
		c.serverError(w, r, err)
		return
	}
	Redirect(w, r, fmt.Sprintf("/groups/%d", group.ID))
}

func (c *Controllers) GetGoal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}

	group, goal, ok := c.loadGoal(w, r, user)
	if !ok {
		return
	}
	view := goalView{
		baseView: baseView{Title: goal.Title + " . Silly Goals", User: user, CSRFToken: token},
		Group:    group,
		Goal:     goal,
	}
	if IsHtmx(r) {
		c.render.Partial(w, r, http.StatusOK, "goal", view)
		return
	}
	c.render.Page(w, r, http.StatusOK, "goal", view)
}

func (c *Controllers) EditGoal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}

	group, goal, ok := c.loadGoal(w, r, user)
	if !ok {
		return
	}
	c.render.Page(w, r, http.StatusOK, "goal_form", goalFormView{
		baseView: baseView{Title: "Edit Goal . Silly Goals", User: user, CSRFToken: token},
		Group:    group,
		Goal:     goal,
		Action:   fmt.Sprintf("/groups/%d/goals/%d/edit", group.ID, goal.ID),
	})
}

func (c *Controllers) PostEditGoal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}

	group, goal, ok := c.loadGoal(w, r, user)
	if !ok {
		return
	}
	updated, ok := c.goalFromForm(w, r, group)
	if !ok {
		return
	}
	updated.ID = goal.ID
	if err := c.st.Goals().Update(r.Context(), *updated); err != nil {
		c.storeError(w, r, err)
		return
	}
	Redirect(w, r, fmt.Sprintf("/groups/%d/goals/%d", group.ID, goal.ID))
}

func (c *Controllers) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	if !c.checkCSRF(w, r, sess) {
		return
	}

	group, goal, ok := c.loadGoal(w, r, user)
	if !ok {
		return
	}
	if err := c.st.Goals().Delete(r.Context(), group.ID, goal.ID); err != nil {
		c.storeError(w, r, err)
		return
	}
	Redirect(w, r, fmt.Sprintf("/groups/%d", group.ID))
}

// PatchGoalStage moves a goal between stages, driven by the stage
// picker's hx-patch, and re-renders the goal.
func (c *Controllers) PatchGoalStage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := c.currentUser(w, r, sess)
	if !ok {
		return
	}
	token, ok := c.token(w, r, sess)
	if !ok {
		return
	}

	group, goal, ok := c.loadGoal(w, r, user)
	if !ok {
		return
	}
	stage, err := strconv.Atoi(r.URL.Query().Get("stage"))
	if err != nil || stage < 0 || stage >= len(group.Tone.Stages) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := c.st.Goals().UpdateStage(r.Context(), group.ID, goal.ID, stage); err != nil {
		c.storeError(w, r, err)
		return
	}
	goal.Stage = stage

	view := goalView{
		baseView: baseView{Title: goal.Title + " . Silly Goals", User: user, CSRFToken: token},
		Group:    group,
		Goal:     goal,
	}
	if IsHtmx(r) {
		c.render.Partial(w, r, http.StatusOK, "goal", view)
		return
	}
	c.render.Page(w, r, http.StatusOK, "goal", view)
}

// --- helpers ---

func (c *Controllers) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	c.serverError(w, r, err)
}

func (c *Controllers) loadGroup(w http.ResponseWriter, r *http.Request, user *store.User) (*store.GroupWithTone, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	group, err := c.st.Groups().ByID(r.Context(), user.ID, id)
	if err != nil {
		c.storeError(w, r, err)
		return nil, false
	}
	return group, true
}

func (c *Controllers) loadGoal(w http.ResponseWriter, r *http.Request, user *store.User) (*store.GroupWithTone, *store.Goal, bool) {
	group, ok := c.loadGroup(w, r, user)
	if !ok {
		return nil, nil, false
	}
	goalID, ok := pathID(r, "goalID")
	if !ok {
		http.NotFound(w, r)
		return nil, nil, false
	}
	goal, err := c.st.Goals().ByID(r.Context(), group.ID, goalID)
	if err != nil {
		c.storeError(w, r, err)
		return nil, nil, false
	}
	return group, goal, true
}

// groupFromForm reads and validates the group form, checking the tone
// belongs to the user or is global.
func (c *Controllers) groupFromForm(w http.ResponseWriter, r *http.Request, user *store.User) (*store.Group, bool) {
	title := r.PostFormValue("title")
	if title == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}
	toneID, err := strconv.ParseInt(r.PostFormValue("tone_id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}
	if _, err := c.st.Tones().ByID(r.Context(), user.ID, toneID); err != nil {
		c.storeError(w, r, err)
		return nil, false
	}
	return &store.Group{
		Title:       title,
		Description: r.PostFormValue("description"),
		UserID:      user.ID,
		ToneID:      toneID,
	}, true
}

// goalFromForm reads and validates the goal form. The stage must index
// into the group tone's stages; the deadline is optional.
func (c *Controllers) goalFromForm(w http.ResponseWriter, r *http.Request, group *store.GroupWithTone) (*store.Goal, bool) {
	title := r.PostFormValue("title")
	if title == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}
	stage, err := strconv.Atoi(r.PostFormValue("stage"))
	if err != nil || stage < 0 || stage >= len(group.Tone.Stages) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}

	goal := &store.Goal{
		Title:       title,
		Description: r.PostFormValue("description"),
		Stage:       stage,
		GroupID:     group.ID,
	}
	if v := r.PostFormValue("deadline"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return nil, false
		}
		goal.Deadline = &d
	}
	return goal, true
}

// Package memory implements store.Store in process memory. It backs
// unit tests and disposable dev runs; production uses postgres.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sillygoals/sillygoals/internal/store"
)

// Store is the in-memory store.Store.
type Store struct {
	mu sync.Mutex

	nextUserID  int64
	nextToneID  int64
	nextGroupID int64
	nextGoalID  int64

	users map[int64]*store.User
	creds map[int64][]store.Credential
	tones map[int64]*store.Tone
	grps  map[int64]*store.Group
	goals map[int64]*store.Goal
}

// New creates an empty memory store pre-seeded with the global tones.
func New() *Store {
	s := &Store{
		users: make(map[int64]*store.User),
		creds: make(map[int64][]store.Credential),
		tones: make(map[int64]*store.Tone),
		grps:  make(map[int64]*store.Group),
		goals: make(map[int64]*store.Goal),
	}
	for _, t := range store.GlobalTones() {
		s.nextToneID++
		tone := t
		tone.ID = s.nextToneID
		s.tones[tone.ID] = &tone
	}
	return s
}

func (s *Store) Users() store.Users             { return (*usersRepo)(s) }
func (s *Store) Credentials() store.Credentials { return (*credentialsRepo)(s) }
func (s *Store) Tones() store.Tones             { return (*tonesRepo)(s) }
func (s *Store) Groups() store.Groups           { return (*groupsRepo)(s) }
func (s *Store) Goals() store.Goals             { return (*goalsRepo)(s) }

// --- users ---

type usersRepo Store

func (r *usersRepo) ByPublicID(_ context.Context, publicID uuid.UUID) (*store.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PublicID == publicID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *usersRepo) ByEmail(_ context.Context, email string) (*store.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *usersRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := r.ByEmail(ctx, email)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *usersRepo) Create(_ context.Context, email string) (*store.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextUserID++
	u := &store.User{
		ID:        r.nextUserID,
		PublicID:  uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		IsNewUser: true,
	}
	r.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *usersRepo) UpdateName(_ context.Context, publicID uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PublicID == publicID {
			u.Name = name
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *usersRepo) UpdateEmail(_ context.Context, publicID uuid.UUID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PublicID == publicID {
			u.Email = strings.ToLower(email)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *usersRepo) ClearNewFlag(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsNewUser = false
	}
	return nil
}

func (r *usersRepo) Delete(_ context.Context, publicID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.PublicID == publicID {
			delete(r.users, id)
			delete(r.creds, id)
			for gid, g := range r.grps {
				if g.UserID == id {
					delete(r.grps, gid)
					for goalID, goal := range r.goals {
						if goal.GroupID == gid {
							delete(r.goals, goalID)
						}
					}
				}
			}
			return nil
		}
	}
	return store.ErrNotFound
}

// --- credentials ---

type credentialsRepo Store

func (r *credentialsRepo) ByUser(_ context.Context, userID int64) ([]store.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	creds := make([]store.Credential, len(r.creds[userID]))
	copy(creds, r.creds[userID])
	return creds, nil
}

func (r *credentialsRepo) Insert(_ context.Context, cred store.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds[cred.UserID] = append(r.creds[cred.UserID], cred)
	return nil
}

// --- tones ---

type tonesRepo Store

func (r *tonesRepo) ForUser(_ context.Context, userID int64) ([]store.Tone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tones []store.Tone
	for id := int64(1); id <= r.nextToneID; id++ {
		t, ok := r.tones[id]
		if ok && (t.Global || t.UserID == userID) {
			tones = append(tones, *t)
		}
	}
	return tones, nil
}

func (r *tonesRepo) ByID(_ context.Context, userID, toneID int64) (*store.Tone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tones[toneID]
	if !ok || (!t.Global && t.UserID != userID) {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// --- groups ---

type groupsRepo Store

func (r *groupsRepo) ForUser(_ context.Context, userID int64) ([]store.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var groups []store.Group
	for id := int64(1); id <= r.nextGroupID; id++ {
		g, ok := r.grps[id]
		if ok && g.UserID == userID {
			groups = append(groups, *g)
		}
	}
	return groups, nil
}

func (r *groupsRepo) ByID(_ context.Context, userID, groupID int64) (*store.GroupWithTone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grps[groupID]
	if !ok || g.UserID != userID {
		return nil, store.ErrNotFound
	}
	t, ok := r.tones[g.ToneID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.GroupWithTone{Group: *g, Tone: *t}, nil
}

func (r *groupsRepo) Create(_ context.Context, g store.Group) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextGroupID++
	g.ID = r.nextGroupID
	r.grps[g.ID] = &g
	return g.ID, nil
}

func (r *groupsRepo) Update(_ context.Context, g store.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.grps[g.ID]
	if !ok || existing.UserID != g.UserID {
		return store.ErrNotFound
	}
	existing.Title = g.Title
	existing.Description = g.Description
	existing.ToneID = g.ToneID
	return nil
}

func (r *groupsRepo) Delete(_ context.Context, userID, groupID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grps[groupID]
	if !ok || g.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.grps, groupID)
	for goalID, goal := range r.goals {
		if goal.GroupID == groupID {
			delete(r.goals, goalID)
		}
	}
	return nil
}

// --- goals ---

type goalsRepo Store

func (r *goalsRepo) ForGroup(_ context.Context, groupID int64) ([]store.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var goals []store.Goal
	for id := int64(1); id <= r.nextGoalID; id++ {
		g, ok := r.goals[id]
		if ok && g.GroupID == groupID {
			goals = append(goals, *g)
		}
	}
	return goals, nil
}

func (r *goalsRepo) ByID(_ context.Context, groupID, goalID int64) (*store.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[goalID]
	if !ok || g.GroupID != groupID {
		return nil, store.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *goalsRepo) Create(_ context.Context, g store.Goal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextGoalID++
	g.ID = r.nextGoalID
	r.goals[g.ID] = &g
	return g.ID, nil
}

func (r *goalsRepo) Update(_ context.Context, g store.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.goals[g.ID]
	if !ok || existing.GroupID != g.GroupID {
		return store.ErrNotFound
	}
	existing.Title = g.Title
	existing.Description = g.Description
	existing.Stage = g.Stage
	existing.Deadline = g.Deadline
	return nil
}

func (r *goalsRepo) UpdateStage(_ context.Context, groupID, goalID int64, stage int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[goalID]
	if !ok || g.GroupID != groupID {
		return store.ErrNotFound
	}
	g.Stage = stage
	return nil
}

func (r *goalsRepo) Delete(_ context.Context, groupID, goalID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[goalID]
	if !ok || g.GroupID != groupID {
		return store.ErrNotFound
	}
	delete(r.goals, goalID)
	return nil
}

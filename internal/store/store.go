// Package store defines the durable data model and repository contracts.
// Implementations live in the postgres and memory subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("store: not found")

// User is a registered account. PublicID is the identifier exposed to
// sessions and WebAuthn; the numeric ID never leaves the server.
type User struct {
	ID        int64
	PublicID  uuid.UUID
	Name      string
	Email     string
	IsNewUser bool
}

// DisplayName is the user's name, falling back to the email address.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Credential is a stored WebAuthn public-key credential. Passkey holds
// the protocol library's credential serialized as JSON; it is written
// once and never mutated.
type Credential struct {
	ID      uuid.UUID
	UserID  int64
	Passkey []byte
}

// GoalBehavior controls how a tone treats unmet goals.
type GoalBehavior string

const (
	BehaviorHide GoalBehavior = "hide"
	BehaviorNice GoalBehavior = "nice"
	BehaviorMean GoalBehavior = "mean"
)

// DeadlineType controls whether goal deadlines are enforced.
type DeadlineType string

const (
	DeadlineOff  DeadlineType = "off"
	DeadlineSoft DeadlineType = "soft"
	DeadlineHard DeadlineType = "hard"
)

// Tone is a named personality for a group: stage labels, greeting, and
// behavior toggles. Global tones have UserID 0 and are visible to all.
type Tone struct {
	ID            int64
	Name          string
	UserID        int64
	Global        bool
	Stages        []string
	Greeting      string
	UnmetBehavior GoalBehavior
	Deadline      DeadlineType
}

// Group is a collection of goals sharing a tone.
type Group struct {
	ID          int64
	Title       string
	Description string
	UserID      int64
	ToneID      int64
}

// GroupWithTone is a group joined with its tone for display.
type GroupWithTone struct {
	Group
	Tone Tone
}

// Goal is a single tracked goal inside a group.
type Goal struct {
	ID          int64
	Title       string
	Description string
	Stage       int
	GroupID     int64
	Deadline    *time.Time
}

// Users is the durable user repository. Email lookups are always
// case-insensitive; addresses are stored lowercased.
type Users interface {
	ByPublicID(ctx context.Context, publicID uuid.UUID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email string) (*User, error)
	UpdateName(ctx context.Context, publicID uuid.UUID, name string) error
	UpdateEmail(ctx context.Context, publicID uuid.UUID, email string) error
	ClearNewFlag(ctx context.Context, id int64) error
	Delete(ctx context.Context, publicID uuid.UUID) error
}

// Credentials stores WebAuthn credentials per user.
type Credentials interface {
	ByUser(ctx context.Context, userID int64) ([]Credential, error)
	Insert(ctx context.Context, cred Credential) error
}

// Tones serves the tones visible to a user: their own plus globals.
type Tones interface {
	ForUser(ctx context.Context, userID int64) ([]Tone, error)
	ByID(ctx context.Context, userID, toneID int64) (*Tone, error)
}

// Groups is user-scoped: every operation filters by the owning user.
type Groups interface {
	ForUser(ctx context.Context, userID int64) ([]Group, error)
	ByID(ctx context.Context, userID, groupID int64) (*GroupWithTone, error)
	Create(ctx context.Context, g Group) (int64, error)
	Update(ctx context.Context, g Group) error
	Delete(ctx context.Context, userID, groupID int64) error
}

// Goals is group-scoped; callers resolve the group through Groups first
// so user scoping has already been enforced.
type Goals interface {
	ForGroup(ctx context.Context, groupID int64) ([]Goal, error)
	ByID(ctx context.Context, groupID, goalID int64) (*Goal, error)
	Create(ctx context.Context, g Goal) (int64, error)
	Update(ctx context.Context, g Goal) error
	UpdateStage(ctx context.Context, groupID, goalID int64, stage int) error
	Delete(ctx context.Context, groupID, goalID int64) error
}

// Store aggregates all repositories.
type Store interface {
	Users() Users
	Credentials() Credentials
	Tones() Tones
	Groups() Groups
	Goals() Goals
}

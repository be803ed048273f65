package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/sillygoals/sillygoals/internal/observability/logger"
)

// Session is the in-request view of one browser session. Handlers read
// and write named values through typed Value accessors; the Manager
// persists the whole blob once the request finishes.
type Session struct {
	id string

	mu        sync.Mutex
	data      map[string]json.RawMessage
	dirty     bool
	destroyed bool
}

// New creates a detached session, primarily for tests and for the
// Manager when no cookie was presented.
func New(id string) *Session {
	return &Session{id: id, data: make(map[string]json.RawMessage)}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// Destroy wipes all values and tells the Manager to drop the session
// from the store and expire the cookie.
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]json.RawMessage)
	s.destroyed = true
	s.dirty = true
}

func (s *Session) getRaw(name string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[name]
	return raw, ok
}

func (s *Session) putRaw(name string, raw json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = raw
	s.dirty = true
}

func (s *Session) removeRaw(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[name]; ok {
		delete(s.data, name)
		s.dirty = true
	}
}

func (s *Session) snapshot() (data map[string]json.RawMessage, dirty, destroyed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data = make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}
	return data, s.dirty, s.destroyed
}

type ctxKey struct{}

// FromContext returns the request's session. The Manager middleware
// guarantees one is present on every wrapped route.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// ToContext injects a session, used by the Manager and by tests.
func ToContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Manager loads and saves sessions around each request.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, opts ManagerOptions) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "sg_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{
		store:      store,
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
	}
}

// Middleware attaches a session to every request. A new session id is
// minted when the browser presents no cookie or an unknown one. The blob
// is written back after the handler runs; concurrent requests therefore
// race last-writer-wins.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.From(ctx).With(logger.Component("session"))

		var sess *Session
		if ck, err := r.Cookie(m.cookieName); err == nil && ck.Value != "" {
			data, ok, err := m.store.Load(ctx, ck.Value)
			if err != nil {
				log.Error("session load failed", logger.Err(err))
			} else if ok {
				sess = &Session{id: ck.Value, data: data}
			}
		}
		if sess == nil {
			sess = New(newID())
			http.SetCookie(w, m.cookie(sess.ID(), m.ttl))
		}

		next.ServeHTTP(w, r.WithContext(ToContext(ctx, sess)))

		data, dirty, destroyed := sess.snapshot()
		switch {
		case destroyed:
			if err := m.store.Delete(ctx, sess.ID()); err != nil {
				log.Error("session delete failed", logger.Err(err), logger.SessionID(sess.ID()))
			}
			http.SetCookie(w, m.cookie("", -time.Hour))
		case dirty:
			if err := m.store.Save(ctx, sess.ID(), data, m.ttl); err != nil {
				log.Error("session save failed", logger.Err(err), logger.SessionID(sess.ID()))
			}
		}
	})
}

func (m *Manager) cookie(value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}

func newID() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("session: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b[:])
}

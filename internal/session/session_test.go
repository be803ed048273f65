package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(time.Hour)

	_, ok, err := st.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	data := map[string]json.RawMessage{"k": json.RawMessage(`"v"`)}
	require.NoError(t, st.Save(ctx, "id1", data, time.Hour))

	got, ok, err := st.Load(ctx, "id1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, json.RawMessage(`"v"`), got["k"])

	// mutating the loaded blob must not leak into the store
	got["k"] = json.RawMessage(`"changed"`)
	again, _, err := st.Load(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"v"`), again["k"])

	require.NoError(t, st.Delete(ctx, "id1"))
	_, ok, err = st.Load(ctx, "id1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerMintsSessionAndPersists(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	m := NewManager(st, ManagerOptions{CookieName: "sg_session", TTL: time.Hour})
	v := NewValue[string]("greeting")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromContext(r.Context())
		require.NotNil(t, sess)
		require.NoError(t, v.Save(sess, "hello"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	id := cookies[0].Value
	require.NotEmpty(t, id)

	data, ok, err := st.Load(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, data, "greeting")
}

func TestManagerLoadsExistingSession(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	m := NewManager(st, ManagerOptions{CookieName: "sg_session", TTL: time.Hour})
	v := NewValue[string]("greeting")

	require.NoError(t, st.Save(context.Background(), "known",
		map[string]json.RawMessage{"greeting": json.RawMessage(`"hi"`)}, time.Hour))

	var got string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromContext(r.Context())
		val, ok, err := v.Get(sess)
		require.NoError(t, err)
		require.True(t, ok)
		got = val
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sg_session", Value: "known"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "hi", got)
}

func TestManagerDestroyDeletesAndExpiresCookie(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	m := NewManager(st, ManagerOptions{CookieName: "sg_session", TTL: time.Hour})

	require.NoError(t, st.Save(context.Background(), "doomed",
		map[string]json.RawMessage{"k": json.RawMessage(`1`)}, time.Hour))

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Destroy()
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sg_session", Value: "doomed"})
	h.ServeHTTP(rec, req)

	_, ok, err := st.Load(context.Background(), "doomed")
	require.NoError(t, err)
	assert.False(t, ok)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

// Concurrent requests race last-writer-wins: the losing write is
// overwritten wholesale, never merged.
func TestLastWriterWins(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(time.Hour)

	a := map[string]json.RawMessage{"a": json.RawMessage(`1`)}
	b := map[string]json.RawMessage{"b": json.RawMessage(`2`)}

	require.NoError(t, st.Save(ctx, "race", a, time.Hour))
	require.NoError(t, st.Save(ctx, "race", b, time.Hour))

	got, ok, err := st.Load(ctx, "race")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, got, "a")
	assert.Contains(t, got, "b")
}

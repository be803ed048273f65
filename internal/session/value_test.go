package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Email string `json:"email"`
	Tries int    `json:"tries"`
}

func TestValueRoundTrip(t *testing.T) {
	sess := New("s1")
	v := NewValue[testPayload]("test_payload")

	_, ok, err := v.Get(sess)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, v.Save(sess, testPayload{Email: "a@b.c", Tries: 2}))

	got, ok, err := v.Get(sess)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a@b.c", got.Email)
	assert.Equal(t, 2, got.Tries)

	v.Remove(sess)
	_, ok, err = v.Get(sess)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValueCorruptIsNotAbsent(t *testing.T) {
	sess := New("s2")
	v := NewValue[testPayload]("test_payload")

	sess.putRaw("test_payload", json.RawMessage(`"not an object"`))

	_, ok, err := v.Get(sess)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestValueOverwrite(t *testing.T) {
	sess := New("s3")
	v := NewValue[string]("slot")

	require.NoError(t, v.Save(sess, "first"))
	require.NoError(t, v.Save(sess, "second"))

	got, ok, err := v.Get(sess)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestRemoveMissingIsNoop(t *testing.T) {
	sess := New("s4")
	NewValue[string]("nothing").Remove(sess)

	_, dirty, _ := sess.snapshot()
	assert.False(t, dirty)
}

func TestDestroyWipesValues(t *testing.T) {
	sess := New("s5")
	v := NewValue[string]("slot")
	require.NoError(t, v.Save(sess, "x"))

	sess.Destroy()

	_, ok, err := v.Get(sess)
	require.NoError(t, err)
	assert.False(t, ok)
}

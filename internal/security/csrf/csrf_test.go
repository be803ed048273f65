package csrf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sillygoals/sillygoals/internal/session"
)

func TestGetOrCreateIsStable(t *testing.T) {
	sess := session.New("t1")

	first, err := GetOrCreate(sess)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := GetOrCreate(sess)
	require.NoError(t, err)
	assert.Equal(t, first, second, "token must not rotate within a session")
}

func TestVerifyFromSession(t *testing.T) {
	sess := session.New("t2")
	token, err := GetOrCreate(sess)
	require.NoError(t, err)

	assert.NoError(t, VerifyFromSession(sess, token))
	assert.ErrorIs(t, VerifyFromSession(sess, token+"x"), ErrInvalid)
	assert.ErrorIs(t, VerifyFromSession(sess, ""), ErrInvalid)
}

func TestVerifyWithoutToken(t *testing.T) {
	sess := session.New("t3")
	assert.ErrorIs(t, VerifyFromSession(sess, "anything"), ErrInvalid)
}

func TestTokensDifferAcrossSessions(t *testing.T) {
	a, err := GetOrCreate(session.New("a"))
	require.NoError(t, err)
	b, err := GetOrCreate(session.New("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

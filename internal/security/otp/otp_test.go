package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducesSixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		c := New()
		require.Len(t, c.Value, 6)
		for _, r := range c.Value {
			require.True(t, r >= '0' && r <= '9', "code %q has non-digit", c.Value)
		}
	}
}

func TestVerify(t *testing.T) {
	c := Code{Value: "004217", IssuedAt: time.Now()}

	assert.True(t, c.Verify("004217", 15*time.Minute))
	assert.False(t, c.Verify("004218", 15*time.Minute))
	assert.False(t, c.Verify("", 15*time.Minute))
	// no normalization: leading zeros matter
	assert.False(t, c.Verify("4217", 15*time.Minute))
}

func TestVerifyExpiry(t *testing.T) {
	c := Code{Value: "123456", IssuedAt: time.Now().Add(-time.Hour)}

	assert.False(t, c.Verify("123456", 15*time.Minute))
	// non-positive TTL disables expiry
	assert.True(t, c.Verify("123456", 0))
}

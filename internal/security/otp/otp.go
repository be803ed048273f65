// Package otp generates and checks the six-digit one-time codes sent by
// email. A million-value space is acceptable only because each code is
// single-use, expires, and is bound to an unguessable browser session.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

var codeSpace = big.NewInt(1_000_000)

// Code is one emailed one-time code together with its issue time.
type Code struct {
	Value    string    `json:"value"`
	IssuedAt time.Time `json:"issued_at"`
}

// New draws a uniformly random six-digit code from a cryptographically
// strong source.
func New() Code {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		panic("otp: crypto/rand unavailable: " + err.Error())
	}
	return Code{
		Value:    fmt.Sprintf("%06d", n.Int64()),
		IssuedAt: time.Now().UTC(),
	}
}

// Verify reports whether submitted exactly equals the code and the code
// has not outlived ttl. A non-positive ttl disables expiry.
func (c Code) Verify(submitted string, ttl time.Duration) bool {
	if ttl > 0 && time.Since(c.IssuedAt) > ttl {
		return false
	}
	return submitted == c.Value
}

// String renders the code for inclusion in mail bodies.
func (c Code) String() string { return c.Value }

package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Value.Get when a value exists under its name
// but cannot be decoded. It is distinct from absence: a corrupt value
// must never silently read as "not set".
var ErrCorrupt = errors.New("session: corrupt value")

// Value is a typed accessor for one named session slot. Each conceptual
// value owns a fixed name; names must be unique across the application.
type Value[T any] struct {
	name string
}

// NewValue declares a typed slot under the given fixed name.
func NewValue[T any](name string) Value[T] {
	return Value[T]{name: name}
}

// Name returns the slot's storage name.
func (v Value[T]) Name() string { return v.name }

// Get reads the slot. ok is false when the slot is empty; a decode
// failure returns ErrCorrupt.
func (v Value[T]) Get(s *Session) (val T, ok bool, err error) {
	raw, present := s.getRaw(v.name)
	if !present {
		return val, false, nil
	}
	if err := json.Unmarshal(raw, &val); err != nil {
		return val, false, fmt.Errorf("%w: %s: %v", ErrCorrupt, v.name, err)
	}
	return val, true, nil
}

// Save overwrites the slot.
func (v Value[T]) Save(s *Session, val T) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", v.name, err)
	}
	s.putRaw(v.name, raw)
	return nil
}

// Remove clears the slot; clearing an empty slot is a no-op.
func (v Value[T]) Remove(s *Session) {
	s.removeRaw(v.name)
}

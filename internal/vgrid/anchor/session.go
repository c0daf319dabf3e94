// internal/vgrid/anchor/session.go
package anchor

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Session carries the one-shot landing flag shared by every grid on a page.
// Any grid may consume it; nothing but a new page session clears it.
type Session struct {
	id       string
	consumed atomic.Bool
}

// NewSession starts a page session with an unconsumed landing flag.
func NewSession() *Session {
	return &Session{id: uuid.New().String()}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Consumed reports whether a landing anchor has already been honored.
func (s *Session) Consumed() bool { return s.consumed.Load() }

// Consume marks the landing anchor as honored. It returns true only for the
// call that flipped the flag.
func (s *Session) Consume() bool { return s.consumed.CompareAndSwap(false, true) }

// ResetForTest clears the flag, standing in for a full page reload.
func (s *Session) ResetForTest() { s.consumed.Store(false) }

package db

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Token is the opaque cancellation handle spec §6 describes: "cancel() and
// is_cancelled(); derived tokens compose (parent cancel cascades to
// children)". A Database hands out a fresh Token on every revision bump and
// cancels the previous one, so in-flight queries racing against a write see
// Cancelled instead of reading a half-updated input (§5, "a second request
// arriving after cancellation sees a clean database state").
type Token struct {
	id        uuid.UUID
	parent    *Token
	cancelled atomic.Bool
}

func newToken(parent *Token) *Token {
	return &Token{id: uuid.New(), parent: parent}
}

// ID returns the token's identity, for correlating a cancellation with the
// log line that caused it.
func (t *Token) ID() uuid.UUID { return t.id }

// Cancel marks t (and therefore every child derived from it) cancelled.
func (t *Token) Cancel() {
	if t == nil {
		return
	}
	t.cancelled.Store(true)
}

// IsCancelled reports whether t or any ancestor of t has been cancelled.
func (t *Token) IsCancelled() bool {
	for c := t; c != nil; c = c.parent {
		if c.cancelled.Load() {
			return true
		}
	}
	return false
}

// Child derives a token that is cancelled whenever t is, in addition to
// whatever cancels the child directly — the "derived tokens compose" half
// of §6's contract.
func (t *Token) Child() *Token {
	return newToken(t)
}

package leads

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
)

// ErrSubmissionInFlight is returned when a follow-up is submitted while the
// previous one from the same user is still being written
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// SubmitGuard lets one submission through at a time
type SubmitGuard struct {
	busy atomic.Bool
}

// Acquire claims the guard. The returned release func must be called once
// the submission finished.
func (g *SubmitGuard) Acquire() (release func(), err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, domain.NewConflictError("Please wait for the previous submission to finish", ErrSubmissionInFlight)
	}
	return func() { g.busy.Store(false) }, nil
}

// Guards hands out one SubmitGuard per user
type Guards struct {
	mu     sync.Mutex
	guards map[string]*SubmitGuard
}

// NewGuards creates an empty registry
func NewGuards() *Guards {
	return &Guards{guards: make(map[string]*SubmitGuard)}
}

// For returns the guard of user, creating it on first use
func (r *Guards) For(user string) *SubmitGuard {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.guards[user]
	if !ok {
		g = &SubmitGuard{}
		r.guards[user] = g
	}
	return g
}

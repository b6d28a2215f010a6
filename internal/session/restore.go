package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RestoreTicket is a one-time token handed to a client whose session
// disconnected with RequiresRestoreOnDisconnect set, letting a
// reconnecting socket prove which prior session it is resuming without
// exposing the raw session ID (spec.md §4.4 step 1's restore path; see
// SPEC_FULL.md DOMAIN STACK on google/uuid session-restore tokens).
type RestoreTicket struct {
	Token     string
	SessionID ID
	ExpiresAt time.Time
}

// TicketRegistry mints and redeems restore tickets. A ticket is single-use:
// Redeem removes it whether or not it was still valid.
type TicketRegistry struct {
	mu      sync.Mutex
	tickets map[string]RestoreTicket
	ttl     time.Duration
}

func NewTicketRegistry(ttl time.Duration) *TicketRegistry {
	return &TicketRegistry{tickets: make(map[string]RestoreTicket), ttl: ttl}
}

// Issue mints a fresh token for a session about to go into restore-pending
// state (its socket just closed but RequiresRestoreOnDisconnect() is true).
func (r *TicketRegistry) Issue(sessionID ID, now time.Time) string {
	token := uuid.NewString()
	r.mu.Lock()
	r.tickets[token] = RestoreTicket{Token: token, SessionID: sessionID, ExpiresAt: now.Add(r.ttl)}
	r.mu.Unlock()
	return token
}

// Redeem consumes a token, returning the session id it names if the token
// exists and has not expired.
func (r *TicketRegistry) Redeem(token string, now time.Time) (ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[token]
	if !ok {
		return 0, false
	}
	delete(r.tickets, token)
	if now.After(t.ExpiresAt) {
		return 0, false
	}
	return t.SessionID, true
}

// Expire drops any tickets past their TTL without a redemption, so the
// registry doesn't grow unbounded across long-running processes.
func (r *TicketRegistry) Expire(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, t := range r.tickets {
		if now.After(t.ExpiresAt) {
			delete(r.tickets, token)
		}
	}
}

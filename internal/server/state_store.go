package server

import (
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/shared"
)

// DefaultStateTTL is how long a login attempt may take before its state is rejected.
const DefaultStateTTL = 10 * time.Minute

// DefaultMaxPending caps outstanding attempts; the oldest is evicted beyond it.
const DefaultMaxPending = 64

// StateStore tracks pending authorization attempts by their anti-forgery state.
//
// Each state is accepted at most once and only until it expires.
type StateStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	max      int
	attempts map[string]models.AuthorizationAttempt

	now      func() time.Time
	generate func() (string, error)
}

// NewStateStore creates a store whose attempts live for ttl. A non-positive ttl uses [DefaultStateTTL].
func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateStore{
		ttl:      ttl,
		max:      DefaultMaxPending,
		attempts: make(map[string]models.AuthorizationAttempt),
		now:      time.Now,
		generate: shared.GenerateState,
	}
}

// Issue starts a new attempt for redirectURI with a fresh random state.
func (s *StateStore) Issue(redirectURI string) (models.AuthorizationAttempt, error) {
	state, err := s.generate()
	if err != nil {
		return models.AuthorizationAttempt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purge(now)

	attempt := models.AuthorizationAttempt{
		ID:          shared.GenerateID(),
		State:       state,
		RedirectURI: redirectURI,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	if s.max > 0 && len(s.attempts) >= s.max {
		s.evictOldest()
	}
	s.attempts[attempt.ID] = attempt

	return attempt, nil
}

// Consume removes and returns the attempt issued with state.
//
// Unknown, reused and expired states return an error wrapping [shared.ErrStateMismatch]. An expired
// attempt is still returned so callers can log which attempt it was.
func (s *StateStore) Consume(state string) (models.AuthorizationAttempt, error) {
	if state == "" {
		return models.AuthorizationAttempt{}, fmt.Errorf("%w: state parameter missing", shared.ErrStateMismatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var (
		match models.AuthorizationAttempt
		found bool
	)
	// Compare against every entry so timing does not reveal how many attempts are pending.
	for _, a := range s.attempts {
		if subtle.ConstantTimeCompare([]byte(a.State), []byte(state)) == 1 {
			match, found = a, true
		}
	}

	if !found {
		s.purge(now)
		return models.AuthorizationAttempt{}, fmt.Errorf("%w: unknown or already used state", shared.ErrStateMismatch)
	}

	delete(s.attempts, match.ID)
	s.purge(now)

	if match.Expired(now) {
		return match, fmt.Errorf("%w: state expired", shared.ErrStateMismatch)
	}
	return match, nil
}

// Len returns the number of pending attempts, expired ones included until the next purge.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

// purge drops expired attempts. Callers hold s.mu.
func (s *StateStore) purge(now time.Time) {
	for id, a := range s.attempts {
		if a.Expired(now) {
			delete(s.attempts, id)
		}
	}
}

func (s *StateStore) evictOldest() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, a := range s.attempts {
		if oldestID == "" || a.CreatedAt.Before(oldest) {
			oldestID, oldest = id, a.CreatedAt
		}
	}
	delete(s.attempts, oldestID)
}

package server

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/spotauth/internal/shared"
)

// newTestStore returns a store with a controllable clock and predictable states.
func newTestStore(ttl time.Duration) (*StateStore, *time.Time) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStateStore(ttl)
	s.now = func() time.Time { return now }

	n := 0
	s.generate = func() (string, error) {
		n++
		return fmt.Sprintf("state-%d", n), nil
	}
	return s, &now
}

func TestStateStore(t *testing.T) {
	t.Run("issue then consume", func(t *testing.T) {
		s, _ := newTestStore(time.Minute)

		a, err := s.Issue("http://localhost:8888/callback")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if a.ID == "" || a.State != "state-1" || a.RedirectURI != "http://localhost:8888/callback" {
			t.Errorf("unexpected attempt %+v", a)
		}
		if !a.ExpiresAt.Equal(a.CreatedAt.Add(time.Minute)) {
			t.Errorf("expected expiry one ttl after creation, got %v", a.ExpiresAt.Sub(a.CreatedAt))
		}

		got, err := s.Consume("state-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID != a.ID {
			t.Errorf("consumed attempt %s, want %s", got.ID, a.ID)
		}
		if s.Len() != 0 {
			t.Errorf("expected empty store, got %d", s.Len())
		}
	})

	t.Run("single use", func(t *testing.T) {
		s, _ := newTestStore(time.Minute)
		s.Issue("r")

		if _, err := s.Consume("state-1"); err != nil {
			t.Fatalf("first consume failed: %v", err)
		}
		if _, err := s.Consume("state-1"); !errors.Is(err, shared.ErrStateMismatch) {
			t.Errorf("expected replay to fail with ErrStateMismatch, got %v", err)
		}
	})

	t.Run("unknown and empty state", func(t *testing.T) {
		s, _ := newTestStore(time.Minute)
		s.Issue("r")

		for _, state := range []string{"", "state-2", "STATE-1"} {
			if _, err := s.Consume(state); !errors.Is(err, shared.ErrStateMismatch) {
				t.Errorf("Consume(%q) = %v, want ErrStateMismatch", state, err)
			}
		}
		if s.Len() != 1 {
			t.Errorf("failed consumes must not remove the pending attempt, len = %d", s.Len())
		}
	})

	t.Run("expired", func(t *testing.T) {
		s, now := newTestStore(time.Minute)
		a, _ := s.Issue("r")

		*now = now.Add(time.Minute)
		got, err := s.Consume("state-1")
		if !errors.Is(err, shared.ErrStateMismatch) {
			t.Fatalf("expected ErrStateMismatch, got %v", err)
		}
		if got.ID != a.ID {
			t.Errorf("expected expired attempt to be reported, got %+v", got)
		}
	})

	t.Run("purges expired attempts", func(t *testing.T) {
		s, now := newTestStore(time.Minute)
		s.Issue("r")
		s.Issue("r")

		*now = now.Add(2 * time.Minute)
		s.Issue("r")
		if s.Len() != 1 {
			t.Errorf("expected only the fresh attempt to remain, got %d", s.Len())
		}
	})

	t.Run("evicts oldest beyond cap", func(t *testing.T) {
		s, now := newTestStore(time.Hour)
		s.max = 2

		s.Issue("r")
		*now = now.Add(time.Second)
		s.Issue("r")
		*now = now.Add(time.Second)
		s.Issue("r")

		if s.Len() != 2 {
			t.Fatalf("expected cap of 2, got %d", s.Len())
		}
		if _, err := s.Consume("state-1"); err == nil {
			t.Error("expected oldest attempt to be evicted")
		}
		if _, err := s.Consume("state-3"); err != nil {
			t.Errorf("expected newest attempt to remain, got %v", err)
		}
	})

	t.Run("entropy failure", func(t *testing.T) {
		s, _ := newTestStore(time.Minute)
		s.generate = func() (string, error) { return "", shared.ErrEntropy }

		if _, err := s.Issue("r"); !errors.Is(err, shared.ErrEntropy) {
			t.Errorf("expected ErrEntropy, got %v", err)
		}
		if s.Len() != 0 {
			t.Error("failed issue must not store an attempt")
		}
	})

	t.Run("default ttl", func(t *testing.T) {
		s := NewStateStore(0)
		if s.ttl != DefaultStateTTL {
			t.Errorf("ttl = %v, want %v", s.ttl, DefaultStateTTL)
		}
	})
}

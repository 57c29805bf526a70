package shared

import (
	"errors"
	"regexp"
	"testing"
	"testing/iotest"

	"github.com/charmbracelet/log"
)

var hexState = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestGenerateState(t *testing.T) {
	t.Run("fixed length hex", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !hexState.MatchString(state) {
			t.Errorf("expected 32 hex characters, got %q", state)
		}
	})

	t.Run("independent values differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 100 {
			state, err := GenerateState()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if seen[state] {
				t.Fatalf("duplicate state %q", state)
			}
			seen[state] = true
		}
	})

	t.Run("entropy failure", func(t *testing.T) {
		orig := randReader
		randReader = iotest.ErrReader(errors.New("no entropy"))
		t.Cleanup(func() { randReader = orig })

		_, err := GenerateState()
		if !errors.Is(err, ErrEntropy) {
			t.Errorf("expected ErrEntropy, got %v", err)
		}
	})
}

func TestTruncate(t *testing.T) {
	tc := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "longer than limit", in: "BQDx1234567890abc", n: 10, want: "BQDx123456..."},
		{name: "shorter than limit", in: "short", n: 10, want: "short"},
		{name: "zero limit", in: "token", n: 0, want: "token"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyLogLevel(t *testing.T) {
	logger := NewLogger(nil)

	if err := ApplyLogLevel(logger, "debug"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("expected debug level, got %v", logger.GetLevel())
	}

	if err := ApplyLogLevel(logger, ""); err != nil {
		t.Errorf("empty level should be ignored, got %v", err)
	}

	if err := ApplyLogLevel(logger, "shouting"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"expires_in": 3600}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(compact) != `{"expires_in":3600}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(pretty) != "{\n  \"expires_in\": 3600\n}" {
		t.Errorf("unexpected pretty output %s", pretty)
	}
}

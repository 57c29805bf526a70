package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/desertthunder/spotauth/internal/models"
	tu "github.com/desertthunder/spotauth/internal/testing"
)

func TestSectionText(t *testing.T) {
	t.Run("fields skip empty values", func(t *testing.T) {
		got := string(SectionText(Section{
			Title: "Profile Information",
			Fields: []Field{
				{Label: "Display Name", Value: "Ada"},
				{Label: "Email", Value: ""},
				{Label: "Country", Value: "GB"},
			},
		}))

		want := "\nProfile Information:\n- Display Name: Ada\n- Country: GB\n"
		if got != want {
			t.Errorf("SectionText() = %q, want %q", got, want)
		}
	})

	t.Run("numbered items", func(t *testing.T) {
		got := string(SectionText(Section{
			Title: "Your Top Tracks",
			Items: []string{`"One" by A`, `"Two" by B, C`},
		}))

		want := "\nYour Top Tracks:\n1. \"One\" by A\n2. \"Two\" by B, C\n"
		if got != want {
			t.Errorf("SectionText() = %q, want %q", got, want)
		}
	})

	t.Run("empty section", func(t *testing.T) {
		got := string(SectionText(Section{Title: "New Releases"}))
		if !strings.Contains(got, "(no results)") {
			t.Errorf("expected placeholder for empty section, got %q", got)
		}
	})
}

func TestWriteSection(t *testing.T) {
	var sb strings.Builder
	if err := WriteSection(&sb, Section{Title: "T", Items: []string{"x"}}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(sb.String(), "1. x") {
		t.Errorf("unexpected output %q", sb.String())
	}

	if err := WriteSection(&tu.FWriter{}, Section{Title: "T"}); err == nil {
		t.Error("expected error from failing writer")
	}
}

func TestFormatExpiry(t *testing.T) {
	if got := FormatExpiry(3600); got != "3600 seconds (60 minutes)" {
		t.Errorf("FormatExpiry() = %q", got)
	}
}

func TestTokenJSON(t *testing.T) {
	t.Run("defaults token type", func(t *testing.T) {
		data, err := TokenJSON(&models.TokenResponse{AccessToken: "AT2", ExpiresIn: 3600})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var got ScriptToken
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if got.AccessToken != "AT2" || got.ExpiresIn != 3600 || got.TokenType != "Bearer" {
			t.Errorf("unexpected token block %+v", got)
		}
	})

	t.Run("never includes refresh token", func(t *testing.T) {
		data, _ := TokenJSON(&models.TokenResponse{AccessToken: "AT2", RefreshToken: "RT1", TokenType: "bearer"})
		if strings.Contains(string(data), "RT1") {
			t.Errorf("refresh token leaked into script output: %s", data)
		}
		if !strings.Contains(string(data), `"token_type": "bearer"`) {
			t.Errorf("expected provider token type to be kept: %s", data)
		}
	})
}

// package formatter renders API demo sections and token payloads as plain text or JSON
package formatter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/shared"
)

// Field is a labelled value in a [Section]. Empty values are not rendered.
type Field struct {
	Label string
	Value string
}

// Section is the response shape every demo endpoint is reduced to: a title, optional
// labelled fields and an optional numbered list.
type Section struct {
	Title  string
	Fields []Field
	Items  []string
}

// Empty reports whether the section has nothing to show besides its title.
func (s Section) Empty() bool {
	return len(s.Fields) == 0 && len(s.Items) == 0
}

// SectionText renders a section as plain text:
//
//	Title:
//	- Label: Value
//	1. Item
func SectionText(s Section) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("\n%s:\n", s.Title))
	for _, f := range s.Fields {
		if f.Value == "" {
			continue
		}
		buf.WriteString(fmt.Sprintf("- %s: %s\n", f.Label, f.Value))
	}
	for i, item := range s.Items {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
	}
	if s.Empty() {
		buf.WriteString("(no results)\n")
	}

	return buf.Bytes()
}

// WriteSection writes [SectionText] to w.
func WriteSection(w io.Writer, s Section) error {
	if _, err := w.Write(SectionText(s)); err != nil {
		return fmt.Errorf("failed to write section: %w", err)
	}
	return nil
}

// FormatExpiry describes a token lifetime, e.g. "3600 seconds (60 minutes)".
func FormatExpiry(seconds int) string {
	return fmt.Sprintf("%d seconds (%d minutes)", seconds, seconds/60)
}

// ScriptToken is the machine readable token block printed for scripts.
type ScriptToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenJSON returns the pretty-printed [ScriptToken] for a token. The token type defaults to Bearer.
func TokenJSON(token *models.TokenResponse) ([]byte, error) {
	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return shared.MarshalJSON(ScriptToken{
		AccessToken: token.AccessToken,
		ExpiresIn:   token.ExpiresIn,
		TokenType:   tokenType,
	}, true)
}

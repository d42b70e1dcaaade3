package ident

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
)

// Identifier is a normalized name.
type Identifier struct {
	Raw   string // input as given
	Token string // lowercase, separators collapsed to "_"
	Camel string // UpperCamelCase
}

func (id Identifier) String() string { return id.Camel }

// Normalize converts raw into an Identifier. field names the input in the
// returned InvalidIdentifier error.
func Normalize(field, raw string) (Identifier, error) {
	words := splitWords(raw)
	if len(words) == 0 {
		return Identifier{}, errors.InvalidIdentifier(field, raw)
	}
	return Identifier{
		Raw:   raw,
		Token: Token(raw),
		Camel: camel(words),
	}, nil
}

// Token lowercases s and replaces every run of non-alphanumeric characters
// with a single underscore, trimming leading and trailing separators.
func Token(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		if !isWordRune(r) {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func camel(words []string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title.String(w))
	}
	out := b.String()
	// C# identifiers cannot start with a digit.
	if r := []rune(out)[0]; unicode.IsDigit(r) {
		out = "_" + out
	}
	return out
}

// splitWords breaks s on separators and on case boundaries:
// "myWorld" -> [my World], "HTTPServer" -> [HTTP Server], "my-world" -> [my world].
func splitWords(s string) []string {
	var words []string
	runes := []rune(s)
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}
	for i, r := range runes {
		if !isWordRune(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

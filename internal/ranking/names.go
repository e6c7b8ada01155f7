// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	lowerWords = map[string]bool{"at": true, "of": true, "in": true}
	upperWords = map[string]bool{"suny": true, "a&m": true, "cuny": true}

	// authorSuffix matches the numeric suffixes upstream appends to tell
	// same-named authors apart, together with any whitespace around them.
	authorSuffix = regexp.MustCompile(`\s*\d+\s*`)
)

const (
	purdue       = "Purdue University"
	purdueLength = 17
)

// FormatInstitutionName normalizes an institution's display name. Each
// whitespace token is lower-cased and re-capitalized; hyphenated parts are
// capitalized separately and joined with a space. Tokens containing "&" are
// kept whole. "at", "of" and "in" stay lower-case; "suny", "cuny" and "a&m"
// become upper-case. Any name containing "Purdue University" is cut to
// exactly that prefix length.
func FormatInstitutionName(name string) string {
	tokens := strings.Fields(strings.ToLower(name))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.Contains(tok, "&") {
			out = append(out, formatWord(tok))
			continue
		}
		parts := strings.Split(tok, "-")
		formatted := make([]string, 0, len(parts))
		for _, part := range parts {
			if part == "" {
				continue
			}
			formatted = append(formatted, formatWord(part))
		}
		if len(formatted) > 0 {
			out = append(out, strings.Join(formatted, " "))
		}
	}

	result := strings.Join(out, " ")
	if strings.Contains(result, purdue) && utf8.RuneCountInString(result) > purdueLength {
		result = string([]rune(result)[:purdueLength])
	}
	return result
}

func formatWord(word string) string {
	switch {
	case lowerWords[word]:
		return word
	case upperWords[word]:
		return strings.ToUpper(word)
	default:
		return capitalize(word)
	}
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToTitle(r)) + strings.ToLower(s[size:])
}

// FormatAuthorName strips numeric disambiguation suffixes, with their
// surrounding whitespace, from an author name.
func FormatAuthorName(name string) string {
	return strings.TrimSpace(authorSuffix.ReplaceAllString(name, ""))
}

// internal/utils/jsonextract.go
package utils

import (
	"strings"
	"unicode"
)

// Model responses are asked for pure JSON but routinely arrive wrapped in
// prose or markdown fences. ExtractJSONBlock pulls the first balanced JSON
// object or array out of free text so callers can unmarshal it directly.

// Runes are spelled as escapes: a literal BOM or zero-width rune in source
// is rejected by the scanner or silently dropped by editors.
var jsonNoiseReplacer = strings.NewReplacer(
	"```json", "",
	"```", "",
	"\ufeff", "", // byte order mark
	"\u00a0", " ", // no-break space
	"\u2028", "\n", // line separator
	"\u2029", "\n", // paragraph separator
)

// ExtractJSONBlock returns the first balanced {...} or [...] region of s,
// after stripping markdown fences, zero-width runes and control characters.
// Returns "" when the text contains no opening brace or bracket at all. If
// the braces never balance, everything from the opening brace to the last
// closing brace is returned and the caller's json.Unmarshal reports the
// failure.
func ExtractJSONBlock(s string) string {
	if s == "" {
		return ""
	}

	s = jsonNoiseReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return ""
	}
	s = strings.TrimSpace(s[start:])
	if s == "" {
		return ""
	}

	isArray := s[0] == '['

	// Brace counting, skipping anything inside string literals.
	balance := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if isArray {
			switch c {
			case '[':
				balance++
			case ']':
				balance--
			}
		} else {
			switch c {
			case '{':
				balance++
			case '}':
				balance--
			}
		}

		if balance == 0 {
			return strings.TrimSpace(s[:i+1])
		}
	}

	// Truncated output: fall back to the last closing delimiter.
	end := strings.LastIndex(s, "}")
	if isArray {
		end = strings.LastIndex(s, "]")
	}
	if end != -1 {
		return strings.TrimSpace(s[:end+1])
	}
	return strings.TrimSpace(s)
}

// internal/storage/path_resolver.go
package storage

import (
	"path/filepath"
	"strings"
)

// Sanitized fallbacks for titles that reduce to nothing.
const (
	FallbackCourseSlug = "unknown_course"
	FallbackModuleSlug = "unknown_module"
)

// SanitizeName strips every character that is not alphanumeric, space,
// hyphen or underscore, trims trailing whitespace and joins words with
// underscores. The same transform is applied everywhere a project path is
// derived; path equality is how the store detects pre-existing saves, so
// any second variant would silently create an orphaned directory.
func SanitizeName(value, fallback string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimRight(b.String(), " \t\n")
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

// ResolveProjectDir derives the relative storage directory for a
// course/module pair: <course_slug>/<module_slug>. Deterministic and pure.
// Two titles that sanitize identically map to the same directory; that
// collision is a known limitation inherited from the storage layout.
func ResolveProjectDir(courseTitle, moduleTitle string) string {
	course := SanitizeName(courseTitle, FallbackCourseSlug)
	module := SanitizeName(moduleTitle, FallbackModuleSlug)
	return filepath.Join(course, module)
}

// DisplayName reverses the slug mapping for listings: underscores become
// spaces and each word is title-cased. Lossy by design; it only needs to be
// readable, not invertible.
func DisplayName(slug string) string {
	words := strings.Split(strings.ReplaceAll(slug, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

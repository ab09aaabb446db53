// Package text provides text sanitization utilities for paths and filenames.
package text

import (
	"regexp"
	"strings"

	"github.com/Jamestownkid/dontgoogleme/internal/config"
)

// Pre-compiled regex patterns (created once at package init for performance)
var (
	unsafeCharsRegex = regexp.MustCompile(`[^a-z0-9_\- ]+`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// FolderName converts an arbitrary keyword into a filesystem-safe directory
// name: lowercase, only [a-z0-9_-], whitespace collapsed to underscores,
// length capped. An empty result falls back to the literal "keyword".
func FolderName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = unsafeCharsRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, "_")

	if len(s) > config.FolderNameMaxLen {
		s = s[:config.FolderNameMaxLen]
	}
	if s == "" {
		return "keyword"
	}
	return s
}

// FileToken converts a keyword into a short token for image filenames.
// Unlike FolderName it keeps case; it only replaces path-unsafe characters
// and bounds the length.
func FileToken(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

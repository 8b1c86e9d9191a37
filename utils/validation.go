// utils/validation.go - Field format checks shared by services
package utils

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	githubRepoPattern   = regexp.MustCompile(`^(https?://)?(www\.)?github\.com/[a-zA-Z0-9-]+/[a-zA-Z0-9_.-]+/?$`)
	videoURLPattern     = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be|vimeo\.com)/.+$`)
	presentationPattern = regexp.MustCompile(`(?i)\.(pdf|pptx?|key)$`)
	profileURLPattern   = regexp.MustCompile(`^https?://[^\s]+$`)
)

func IsGithubRepoURL(s string) bool {
	return githubRepoPattern.MatchString(s)
}

// IsVideoURL accepts YouTube and Vimeo links.
func IsVideoURL(s string) bool {
	return videoURLPattern.MatchString(s)
}

func IsPresentationURL(s string) bool {
	return presentationPattern.MatchString(strings.TrimSpace(s))
}

func IsHTTPURL(s string) bool {
	return profileURLPattern.MatchString(s)
}

func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, ".")
}

// MaxLen counts runes, not bytes.
func MaxLen(s string, n int) bool {
	return utf8.RuneCountInString(s) <= n
}

func InRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CleanList trims entries and drops blanks and duplicates, keeping order.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

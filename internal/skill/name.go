// Package skill turns processed pages into skill documents and writes them
// under the output root.
package skill

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

const (
	// MaxNameLength bounds a skill name.
	MaxNameLength = 64

	suffixLength = 8
	fallbackName = "index"
)

var pageExtensions = []string{".html", ".htm", ".md", ".txt", ".php", ".asp", ".aspx", ".jsp"}

// DeriveName returns the kebab-case skill name for a page URL. The name is
// built from the URL path; the host is used for the site root.
func DeriveName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallbackName
	}

	path := u.EscapedPath()
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	if name := Sanitize(stripExtension(path)); name != "" {
		return name
	}
	if name := Sanitize(strings.ReplaceAll(u.Hostname(), ".", "-")); name != "" {
		return name
	}
	return fallbackName
}

// Sanitize lower-cases s, turns every run of characters other than a-z and
// 0-9 into one hyphen, trims hyphens and truncates to MaxNameLength without
// splitting a token.
func Sanitize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	pending := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	return truncate(sb.String(), MaxNameLength)
}

// truncate cuts name to at most limit bytes at a hyphen. A single token
// longer than limit is cut hard.
func truncate(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	cut := name[:limit]
	if name[limit] == '-' {
		return cut
	}
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		return cut[:i]
	}
	return cut
}

func stripExtension(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range pageExtensions {
		if strings.HasSuffix(lower, ext) {
			return path[:len(path)-len(ext)]
		}
	}
	return path
}

// Disambiguate appends a suffix derived from rawURL to name, shortening name
// so the result stays within MaxNameLength.
func Disambiguate(name, rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	suffix := hex.EncodeToString(sum[:])[:suffixLength]

	base := truncate(name, MaxNameLength-suffixLength-1)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

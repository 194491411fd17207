package rules

import (
	"fmt"
	"net/url"
	"strings"
)

// Seed is a crawl starting point together with the rules that keep the
// traversal inside it.
type Seed struct {
	URL   string
	Rules []Rule
}

// ScopeSeed turns a command-line seed into a crawl seed.
//
// A seed with a wildcard, such as https://x.com/ui/*, is a scope pattern: the
// crawl starts at the prefix up to the last `/` before the wildcard and only
// URLs matching the pattern are allowed. A plain seed is scoped to its own
// path prefix.
func ScopeSeed(raw string) Seed {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '*'); i >= 0 {
		raw, _, _ = strings.Cut(raw, "#")
		base := raw[:strings.LastIndex(raw[:i], "/")+1]
		pattern := raw
		if strings.HasSuffix(pattern, "/*") {
			pattern += "*"
		}
		return Seed{
			URL: base,
			Rules: []Rule{
				{URL: escape(base), Action: Allow},
				{URL: pattern, Action: Allow},
			},
		}
	}

	normalized, err := NormalizeSeed(raw)
	if err != nil {
		return Seed{URL: raw}
	}
	raw = normalized

	prefix := raw
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return Seed{
		URL: raw,
		Rules: []Rule{
			{URL: escape(raw), Action: Allow},
			{URL: escape(prefix) + "**", Action: Allow},
		},
	}
}

// NormalizeSeed checks that raw is an absolute http(s) URL and drops its
// fragment and surrounding whitespace.
func NormalizeSeed(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid seed URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid seed URL %q: must be an absolute http or https URL", raw)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// ScopeSeeds scopes every seed and prepends the generated rules to base.
func ScopeSeeds(raw []string, base []Rule) ([]string, []Rule) {
	seeds := make([]string, 0, len(raw))
	var scoped []Rule
	for _, r := range raw {
		s := ScopeSeed(r)
		seeds = append(seeds, s.URL)
		scoped = append(scoped, s.Rules...)
	}
	return seeds, append(scoped, base...)
}

// escape quotes glob metacharacters so a literal URL matches only itself.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

package content

import (
	"strings"
	"testing"
)

func TestCleanMarkdownRemovesIconNames(t *testing.T) {
	markdown := `
list chevron_right

# Main Title

content_copy

Some actual content here.

thumb_up thumb_down

Was this page's content helpful?
`
	cleaned := CleanMarkdown(markdown)

	for _, s := range []string{"chevron_right", "content_copy", "thumb_up", "thumb_down", "Was this page's content helpful", "list"} {
		if strings.Contains(cleaned, s) {
			t.Errorf("cleaned markdown still contains %q:\n%s", s, cleaned)
		}
	}
	for _, s := range []string{"# Main Title", "Some actual content here."} {
		if !strings.Contains(cleaned, s) {
			t.Errorf("cleaned markdown lost %q:\n%s", s, cleaned)
		}
	}
}

func TestCleanMarkdownKeepsProseWords(t *testing.T) {
	markdown := "Use the search box to find a list of settings.\n\n- home\n"
	cleaned := CleanMarkdown(markdown)
	if !strings.Contains(cleaned, "Use the search box to find a list of settings.") {
		t.Errorf("prose altered: %q", cleaned)
	}
	if !strings.Contains(cleaned, "- home") {
		t.Errorf("list item removed: %q", cleaned)
	}
}

func TestCleanMarkdownIconLines(t *testing.T) {
	tests := []struct {
		line string
		kept bool
	}{
		{"error", true},
		{"code", true},
		{"info link", true},
		{"Warning", true},
		{"menu search close", false},
		{"content_copy", false},
		{"link open_in_new", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cleaned := CleanMarkdown("Before.\n\n" + tt.line + "\n\nAfter.")
			if got := strings.Contains(cleaned, tt.line); got != tt.kept {
				t.Errorf("CleanMarkdown kept %q = %v, expected %v:\n%s", tt.line, got, tt.kept, cleaned)
			}
		})
	}
}

func TestCleanMarkdownNoiseLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"skip link", "[Skip to main content](#site-content)"},
		{"skip text", "Skip to content"},
		{"cookie", "This site uses cookies from Google to deliver its services."},
		{"accept cookies", "Accept all cookies"},
		{"helpful", "Was this helpful?"},
		{"rate", "Rate this page:"},
		{"footer", "Unless stated otherwise, the documentation on this site reflects the latest version. Page last updated on 2024-10-01."},
		{"last updated", "Last updated: March 3, 2024"},
		{"view source", "[View source](https://x/src) or [report an issue](https://x/issues)."},
		{"empty heading", "##"},
		{"promo", "Check out our newly published guide!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := CleanMarkdown("Intro.\n\n" + tt.line + "\n\nOutro.")
			if strings.Contains(cleaned, tt.line) {
				t.Errorf("noise line kept: %q", cleaned)
			}
			if cleaned != "Intro.\n\nOutro." {
				t.Errorf("CleanMarkdown() = %q, expected %q", cleaned, "Intro.\n\nOutro.")
			}
		})
	}
}

func TestCleanMarkdownEmptyLinks(t *testing.T) {
	cleaned := CleanMarkdown("## Install[](#install)\n\nSee [docs](https://x.com/docs).")
	if cleaned != "## Install\n\nSee [docs](https://x.com/docs)." {
		t.Errorf("CleanMarkdown() = %q", cleaned)
	}
}

func TestCleanMarkdownCollapsesBlankLines(t *testing.T) {
	cleaned := CleanMarkdown("\n\nA\n\n\n\n\nB\n   \n\t\nC\n\n")
	if cleaned != "A\n\nB\n\nC" {
		t.Errorf("CleanMarkdown() = %q, expected %q", cleaned, "A\n\nB\n\nC")
	}
}

func TestCleanMarkdownLeavesCodeFences(t *testing.T) {
	markdown := "```\nmenu\nLast updated: never\n\n\n\nclose\n```"
	cleaned := CleanMarkdown(markdown)
	for _, s := range []string{"menu", "Last updated: never", "close"} {
		if !strings.Contains(cleaned, s) {
			t.Errorf("code fence content %q removed: %q", s, cleaned)
		}
	}
}

func TestWarnIfLarge(t *testing.T) {
	if WarnIfLarge("https://x.com/small", strings.Repeat("a", LargeContentThreshold)) {
		t.Error("document at the threshold should not warn")
	}
	if !WarnIfLarge("https://x.com/big", strings.Repeat("a", LargeContentThreshold+1)) {
		t.Error("document over the threshold should warn")
	}
}

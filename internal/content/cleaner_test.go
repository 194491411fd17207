package content

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func init() {
	// Disable slog output during testing
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	slog.SetDefault(logger)
}

const noisyPage = `<!DOCTYPE html>
<html>
<head><title>Widgets</title><style>body{}</style><script>var x=1;</script></head>
<body class="has-sidebar">
<a href="#main" class="skip">Skip to main content</a>
<header><h1>Site Name</h1></header>
<nav><a href="/a">A</a></nav>
<div class="cookie-banner">We use cookies</div>
<div id="consent-dialog">Consent</div>
<main>
  <!-- build: 1234 -->
  <h1>Widgets <span class="material-icons">link</span></h1>
  <p data-track="x" class="lead">Widgets are reusable components.</p>
  <i class="fa fa-copy"></i>
  <div class="toc">On this page</div>
  <div class="ad-slot ads">Buy now</div>
  <pre><code class="language-go">fmt.Println("hi")</code></pre>
  <div class="feedback-widget">Was this helpful?</div>
  <form><input name="q"></form>
  <button>Copy</button>
</main>
<aside>Related</aside>
<footer>© 2024</footer>
</body>
</html>`

func TestCleanHTMLRemovesNoise(t *testing.T) {
	c := NewCleaner([]string{".toc"})
	out := c.cleanHTML(noisyPage)

	mustNotContain := []string{
		"<script", "<style", "var x=1", "<nav", "<header", "Site Name", "<footer", "<aside",
		"We use cookies", "Consent", "Skip to main content", "build: 1234", "material-icons",
		"fa-copy", "On this page", "Buy now", "Was this helpful", "<form", "<button", "data-track",
	}
	for _, s := range mustNotContain {
		if strings.Contains(out, s) {
			t.Errorf("cleaned HTML still contains %q:\n%s", s, out)
		}
	}

	mustContain := []string{"<main>", "Widgets", "Widgets are reusable components.", "language-go", "fmt.Println"}
	for _, s := range mustContain {
		if !strings.Contains(out, s) {
			t.Errorf("cleaned HTML lost %q:\n%s", s, out)
		}
	}
}

func TestCleanHTMLConfiguredSelectors(t *testing.T) {
	page := `<html><body><div id="promo-x">A</div><div class="keep">B</div><section role="banner">C</section></body></html>`
	c := NewCleaner([]string{"#promo-x", "[role='banner']"})
	out := c.cleanHTML(page)

	if strings.Contains(out, ">A<") || strings.Contains(out, ">C<") {
		t.Errorf("configured selectors were not removed: %s", out)
	}
	if !strings.Contains(out, "B") {
		t.Errorf("unrelated content removed: %s", out)
	}
}

func TestNewCleanerSkipsInvalidSelectors(t *testing.T) {
	c := NewCleaner([]string{"div[[", ".ok"})
	if len(c.selectors) != 1 {
		t.Errorf("selectors = %d, expected 1", len(c.selectors))
	}
}

func TestCleanHTMLTolerantOfMalformedMarkup(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"unclosed tags", `<div><p>Hello <b>world</div>`, "world"},
		{"fragment", `<p>Just a fragment`, "Just a fragment"},
		{"stray closing", `</span></div><p>Text</p>`, "Text"},
		{"empty", ``, ""},
	}

	c := NewCleaner(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.cleanHTML(tt.html)
			if !strings.Contains(out, tt.want) {
				t.Errorf("cleanHTML(%q) = %q, expected it to contain %q", tt.html, out, tt.want)
			}
		})
	}
}

func TestIsNoise(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"cookie-banner", true},
		{"sidebar_left", true},
		{"nav-links", true},
		{"navbar navbar-expand", true},
		{"sr-only", true},
		{"page-meta", true},
		{"layout has-sidebar", false},
		{"wy-nav-content-wrap", false},
		{"site_sidebar", false},
		{"content", false},
		{"canvas-wrapper", false},
		{"downloads", false},
		{"shared-state", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isNoise(tt.value); got != tt.expected {
			t.Errorf("isNoise(%q) = %v, expected %v", tt.value, got, tt.expected)
		}
	}
}

func TestCleanKeepsItalicText(t *testing.T) {
	out := NewCleaner(nil).cleanHTML(`<p>This is <i>important</i> and <i class="icon">search</i></p>`)
	if !strings.Contains(out, "<i>important</i>") {
		t.Errorf("plain italic removed: %s", out)
	}
	if strings.Contains(out, "search") {
		t.Errorf("icon italic kept: %s", out)
	}
}

func TestCleanKeepsContentWrappers(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "read the docs theme",
			html: `<html><body><nav class="wy-nav-side">Menu</nav>
<section class="wy-nav-content-wrap"><div class="wy-nav-content"><div class="document">
<h1>Install</h1><p>Run pip install docskills to get started.</p></div></div></section></body></html>`,
			want: []string{"Install", "Run pip install docskills to get started."},
		},
		{
			name: "sidebar layout around article",
			html: `<html><body><div class="layout has-sidebar"><div class="sidebar">Links</div>
<article><h1>Guide</h1><p>Configure the crawler before the first run.</p></article></div></body></html>`,
			want: []string{"Guide", "Configure the crawler before the first run."},
		},
		{
			name: "navigation class holding most of the text",
			html: `<html><body><div class="nav-container"><h1>Reference</h1>
<p>Every option the command accepts is listed below with its default value.</p></div>
<div class="footer-links">About</div></body></html>`,
			want: []string{"Reference", "Every option the command accepts"},
		},
		{
			name: "role main inside a menu wrapper",
			html: `<html><body><div class="menu-shell"><div role="main"><p>Body text.</p></div></div>
<p>Other text that is rather long so the wrapper is not the bulk of the page at all.</p></body></html>`,
			want: []string{"Body text."},
		},
	}

	c := NewCleaner(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.cleanHTML(tt.html)
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("cleaned HTML lost %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestCleanStillRemovesChromeBesideContent(t *testing.T) {
	page := `<html><body><div class="sidebar-left">Sidebar links</div>
<article><h1>Guide</h1><p>Configure the crawler before the first run, then start it.</p></article>
<div class="toc">Contents</div></body></html>`
	out := NewCleaner(nil).cleanHTML(page)

	for _, s := range []string{"Sidebar links", "Contents"} {
		if strings.Contains(out, s) {
			t.Errorf("cleaned HTML still contains %q:\n%s", s, out)
		}
	}
	if !strings.Contains(out, "Configure the crawler") {
		t.Errorf("article removed:\n%s", out)
	}
}

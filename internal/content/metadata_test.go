package content

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func mustParse(t *testing.T, html string) *Metadata {
	t.Helper()
	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	md := ExtractMetadata(doc, "https://docs.example.com/guide/intro#top")
	return &md
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{"title tag", `<html><head><title> Getting
			Started </title></head><body><h1>Other</h1></body></html>`, "Getting Started"},
		{"h1 fallback", `<html><body><h1>Install <b>Guide</b></h1></body></html>`, "Install Guide"},
		{"untitled", `<html><body><p>no heading</p></body></html>`, "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(t, tt.html).Title; got != tt.expected {
				t.Errorf("Title = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			"meta description",
			`<head><meta name="Description" content="Line one
line two"><meta property="og:description" content="og"></head>`,
			"Line one line two",
		},
		{
			"og fallback",
			`<head><meta property="og:description" content="From open graph"></head>`,
			"From open graph",
		},
		{
			"empty meta falls back to og",
			`<head><meta name="description" content="  "><meta property="og:description" content="OG"></head>`,
			"OG",
		},
		{"none", `<body><p>text</p></body>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(t, tt.html).Description; got != tt.expected {
				t.Errorf("Description = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestExtractDescriptionIsBounded(t *testing.T) {
	long := strings.Repeat("word ", 600)
	md := mustParse(t, `<meta name="description" content="`+long+`">`)
	if n := utf8.RuneCountInString(md.Description); n > MaxDescriptionLength {
		t.Errorf("description length = %d, expected <= %d", n, MaxDescriptionLength)
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{"no link", `<p>x</p>`, "https://docs.example.com/guide/intro"},
		{"relative canonical", `<link rel="canonical" href="/guide/intro/">`, "https://docs.example.com/guide/intro/"},
		{"other host ignored", `<link rel="canonical" href="https://mirror.example.org/intro">`, "https://docs.example.com/guide/intro"},
		{"non-canonical link ignored", `<link rel="stylesheet" href="/x.css">`, "https://docs.example.com/guide/intro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(t, tt.html).CanonicalURL; got != tt.expected {
				t.Errorf("CanonicalURL = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestFirstParagraph(t *testing.T) {
	doc, err := Parse(`<body><p>Too short.</p><p>This paragraph is long enough to serve as a description of the page content.</p></body>`)
	if err != nil {
		t.Fatal(err)
	}
	got := FirstParagraph(doc)
	if got != "This paragraph is long enough to serve as a description of the page content." {
		t.Errorf("FirstParagraph() = %q", got)
	}

	doc, _ = Parse(`<body><p>` + strings.Repeat("lorem ipsum ", 40) + `</p></body>`)
	if n := utf8.RuneCountInString(FirstParagraph(doc)); n > 200 {
		t.Errorf("FirstParagraph() length = %d, expected <= 200", n)
	}

	doc, _ = Parse(`<body><p>short</p></body>`)
	if got := FirstParagraph(doc); got != "" {
		t.Errorf("FirstParagraph() = %q, expected empty", got)
	}
}

func TestTruncateDescription(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		limit    int
		expected string
	}{
		{"short", "Hello world.", 50, "Hello world."},
		{"sentence boundary", "First sentence is here. Second sentence goes on and on.", 30, "First sentence is here."},
		{"word boundary", "alpha beta gamma delta epsilon", 20, "alpha beta gamma..."},
		{"no spaces", strings.Repeat("x", 30), 10, "xxxxxxx..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateDescription(tt.in, tt.limit)
			if got != tt.expected {
				t.Errorf("TruncateDescription() = %q, expected %q", got, tt.expected)
			}
			if n := utf8.RuneCountInString(got); n > tt.limit {
				t.Errorf("length %d exceeds limit %d", n, tt.limit)
			}
		})
	}
}

func TestTruncateDescriptionProperty(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 5000),
		strings.Repeat("word ", 1000),
		strings.Repeat("Sentence one. ", 200),
		strings.Repeat("日本語のテキスト。", 300),
	}
	for _, in := range inputs {
		if n := utf8.RuneCountInString(TruncateDescription(in, MaxDescriptionLength)); n > MaxDescriptionLength {
			t.Errorf("length %d exceeds %d", n, MaxDescriptionLength)
		}
	}
}

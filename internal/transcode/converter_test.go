package transcode

import (
	"strings"
	"testing"
)

func TestConvertBlocks(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string
	}{
		{
			name:     "headings",
			html:     `<h1>Title</h1><h2>Section</h2><h3>Sub <code>x</code></h3>`,
			contains: []string{"# Title", "## Section", "### Sub `x`"},
		},
		{
			name:     "paragraph with inline formatting",
			html:     `<p>Use <strong>bold</strong>, <em>em</em> and <code>code</code>.</p>`,
			contains: []string{"Use **bold**, *em* and `code`."},
		},
		{
			name:     "code block with language",
			html:     `<pre><code class="language-go">fmt.Println("hi")
return nil</code></pre>`,
			contains: []string{"```go", `fmt.Println("hi")`, "return nil", "```"},
		},
		{
			name:     "bullet list",
			html:     `<ul><li>one</li><li>two <a href="/x">link</a></li></ul>`,
			contains: []string{"- one", "- two [link](https://docs.example.com/x)"},
		},
		{
			name:     "ordered list",
			html:     `<ol><li>first</li><li>second</li></ol>`,
			contains: []string{"1. first", "2. second"},
		},
		{
			name:     "nested list",
			html:     `<ul><li>parent<ul><li>child</li></ul></li></ul>`,
			contains: []string{"- parent", "  - child"},
		},
		{
			name:     "blockquote",
			html:     `<blockquote><p>quoted text</p></blockquote>`,
			contains: []string{"> quoted text"},
		},
		{
			name: "table",
			html: `<table><thead><tr><th>Name</th><th>Type</th></tr></thead>
<tbody><tr><td>id</td><td>int</td></tr><tr><td>name</td></tr></tbody></table>`,
			contains: []string{"Name", "Type", "id", "int", "name"},
		},
		{
			name:     "definition list",
			html:     `<dl><dt>Term</dt><dd>Definition here</dd></dl>`,
			contains: []string{"**Term**", "Definition here"},
		},
	}

	c := NewConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(tt.html, "https://docs.example.com/guide/intro")
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Convert() missing %q in:\n%s", s, got)
				}
			}
		})
	}
}

func TestConvertResolvesReferences(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{"relative link", `<p><a href="../api">API</a></p>`, "[API](https://docs.example.com/api)"},
		{"absolute link", `<p><a href="https://other.org/page">Other</a></p>`, "[Other](https://other.org/page)"},
		{"fragment link", `<p><a href="#usage">Usage</a></p>`, "[Usage](https://docs.example.com/guide/intro#usage)"},
		{"image", `<p><img src="img/diagram.png" alt="Diagram"></p>`, "![Diagram](https://docs.example.com/guide/img/diagram.png)"},
	}

	c := NewConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(tt.html, "https://docs.example.com/guide/intro")
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if !strings.Contains(got, tt.expected) {
				t.Errorf("Convert() = %q, expected it to contain %q", got, tt.expected)
			}
		})
	}
}

func TestConvertDropsScriptsAndEmptyLinks(t *testing.T) {
	got, err := NewConverter().Convert(`<p>Keep <a href="javascript:void(0)">this</a></p><script>alert(1)</script>`, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("script content kept: %q", got)
	}
	if strings.Contains(got, "javascript:") {
		t.Errorf("javascript link kept: %q", got)
	}
	if !strings.Contains(got, "Keep this") {
		t.Errorf("link text lost: %q", got)
	}
}

func TestConvertLooseText(t *testing.T) {
	got, err := NewConverter().Convert("<div>Loose   text\n in a div</div><div>Second</div>", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Loose text in a div") || !strings.Contains(got, "Second") {
		t.Errorf("Convert() = %q", got)
	}
	if strings.Contains(got, "Loose text in a divSecond") {
		t.Errorf("blocks merged: %q", got)
	}
}

func TestConvertEmpty(t *testing.T) {
	got, err := NewConverter().Convert("", "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(got) != "" {
		t.Errorf("Convert(\"\") = %q, expected empty", got)
	}
}

func TestCollapse(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"", ""},
		{"  ", " "},
		{"a  b", "a b"},
		{" a\n\tb ", " a b "},
	}
	for _, tt := range tests {
		if got := collapse(tt.in); got != tt.expected {
			t.Errorf("collapse(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}

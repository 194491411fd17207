// Package transcode converts cleaned HTML into Markdown.
//
// Block elements map onto the nao1215/markdown builder (headings,
// paragraphs, lists, code blocks, quotes, tables, rules). Inline elements
// render through its text helpers. Relative links and images resolve
// against the page URL so the document stays usable outside the site.
package transcode

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/markdown"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Converter is an HTML to Markdown transcoder. The zero value is ready to use.
type Converter struct{}

// NewConverter returns a Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert renders cleanedHTML as Markdown. pageURL is the base for relative
// references and may be empty.
func (c *Converter) Convert(cleanedHTML, pageURL string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(cleanedHTML), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var base *url.URL
	if pageURL != "" {
		base, _ = url.Parse(pageURL)
	}

	var sb strings.Builder
	w := &walker{md: markdown.NewMarkdown(&sb), base: base}
	for _, n := range nodes {
		w.block(n)
	}
	w.flush()

	return strings.TrimSpace(w.md.String()) + "\n", nil
}

type walker struct {
	md     *markdown.Markdown
	base   *url.URL
	inline strings.Builder
}

// flush emits pending inline content as a paragraph.
func (w *walker) flush() {
	text := strings.TrimSpace(w.inline.String())
	w.inline.Reset()
	if text != "" {
		w.md.PlainText(text)
		w.md.PlainText("")
	}
}

func (w *walker) block(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline.WriteString(collapse(n.Data))
		return
	case html.ElementNode:
	case html.DocumentNode:
		w.children(n)
		return
	default:
		return
	}

	switch n.DataAtom {
	case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Template:
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.flush()
		if text := strings.TrimSpace(w.text(n)); text != "" {
			w.heading(n.DataAtom, text)
			w.md.PlainText("")
		}
	case atom.P:
		w.flush()
		w.inline.WriteString(w.text(n))
		w.flush()
	case atom.Pre:
		w.flush()
		code := strings.Trim(rawText(n), "\n")
		if strings.TrimSpace(code) != "" {
			w.md.CodeBlocks(markdown.SyntaxHighlight(codeLanguage(n)), code)
			w.md.PlainText("")
		}
	case atom.Ul, atom.Ol:
		w.flush()
		if items := w.listItems(n); len(items) > 0 {
			if n.DataAtom == atom.Ol {
				w.md.OrderedList(items...)
			} else {
				w.md.BulletList(items...)
			}
			w.md.PlainText("")
		}
	case atom.Blockquote:
		w.flush()
		if text := strings.TrimSpace(w.text(n)); text != "" {
			w.md.Blockquote(text)
			w.md.PlainText("")
		}
	case atom.Hr:
		w.flush()
		w.md.HorizontalRule()
		w.md.PlainText("")
	case atom.Table:
		w.flush()
		w.table(n)
	case atom.Dt:
		w.flush()
		if text := strings.TrimSpace(w.text(n)); text != "" {
			w.md.PlainText(markdown.Bold(text))
		}
	case atom.Dd:
		w.flush()
		w.inline.WriteString(w.text(n))
		w.flush()
	case atom.Br:
		w.inline.WriteString(" ")
	case atom.A, atom.Strong, atom.B, atom.Em, atom.I, atom.Code, atom.Img, atom.Span,
		atom.Small, atom.Sup, atom.Sub, atom.Kbd, atom.Mark, atom.Abbr, atom.Cite, atom.Q:
		w.inline.WriteString(w.inlineElement(n))
	default:
		// Containers: div, section, main, article, dl, figure, details, ...
		w.flush()
		w.children(n)
		w.flush()
	}
}

func (w *walker) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.block(c)
	}
}

func (w *walker) heading(a atom.Atom, text string) {
	switch a {
	case atom.H1:
		w.md.H1(text)
	case atom.H2:
		w.md.H2(text)
	case atom.H3:
		w.md.H3(text)
	case atom.H4:
		w.md.H4(text)
	case atom.H5:
		w.md.H5(text)
	default:
		w.md.H6(text)
	}
}

// text renders the inline content of n on one line.
func (w *walker) text(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(w.inlineNode(c))
	}
	return collapse(sb.String())
}

func (w *walker) inlineNode(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return collapse(n.Data)
	case html.ElementNode:
		return w.inlineElement(n)
	default:
		return ""
	}
}

func (w *walker) inlineElement(n *html.Node) string {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return ""
	case atom.Br:
		return " "
	case atom.Code, atom.Kbd:
		if t := strings.TrimSpace(rawText(n)); t != "" {
			return markdown.Code(t)
		}
		return ""
	case atom.Img:
		src := w.resolve(attr(n, "src"))
		if src == "" {
			return ""
		}
		return markdown.Image(attr(n, "alt"), src)
	}

	inner := w.text(n)
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return inner
	}

	switch n.DataAtom {
	case atom.A:
		href := attr(n, "href")
		if href == "" || strings.HasPrefix(href, "javascript:") {
			return inner
		}
		return markdown.Link(trimmed, w.resolve(href))
	case atom.Strong, atom.B:
		return pad(inner, markdown.Bold(trimmed))
	case atom.Em, atom.I, atom.Cite:
		return pad(inner, markdown.Italic(trimmed))
	case atom.P, atom.Div, atom.Li, atom.Tr:
		return " " + trimmed + " "
	default:
		return inner
	}
}

func (w *walker) listItems(list *html.Node) []string {
	var items []string
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}

		var own strings.Builder
		var nested []string
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				for i, sub := range w.listItems(c) {
					marker := "- "
					if c.DataAtom == atom.Ol {
						marker = fmt.Sprintf("%d. ", i+1)
					}
					nested = append(nested, "  "+marker+strings.ReplaceAll(sub, "\n", "\n  "))
				}
				continue
			}
			own.WriteString(w.inlineNode(c))
		}

		item := strings.TrimSpace(collapse(own.String()))
		if len(nested) > 0 {
			item += "\n" + strings.Join(nested, "\n")
		}
		if strings.TrimSpace(item) != "" {
			items = append(items, item)
		}
	}
	return items
}

func (w *walker) table(n *html.Node) {
	var header []string
	var rows [][]string

	var visit func(*html.Node)
	visit = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom != atom.Tr {
				visit(c)
				continue
			}
			var cells []string
			isHeader := true
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type != html.ElementNode || (cell.DataAtom != atom.Td && cell.DataAtom != atom.Th) {
					continue
				}
				if cell.DataAtom == atom.Td {
					isHeader = false
				}
				cells = append(cells, strings.ReplaceAll(strings.TrimSpace(w.text(cell)), "|", `\|`))
			}
			if len(cells) == 0 {
				continue
			}
			if header == nil && isHeader {
				header = cells
			} else {
				rows = append(rows, cells)
			}
		}
	}
	visit(n)

	if header == nil {
		if len(rows) == 0 {
			return
		}
		header, rows = rows[0], rows[1:]
	}

	for i, r := range rows {
		rows[i] = fit(r, len(header))
	}

	w.md.Table(markdown.TableSet{Header: header, Rows: rows})
	w.md.PlainText("")
}

func (w *walker) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || w.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return w.base.ResolveReference(u).String()
}

// fit pads or truncates row to width cells.
func fit(row []string, width int) []string {
	if len(row) > width {
		return row[:width]
	}
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

// pad keeps the surrounding spaces of inner around formatted.
func pad(inner, formatted string) string {
	if strings.HasPrefix(inner, " ") {
		formatted = " " + formatted
	}
	if strings.HasSuffix(inner, " ") {
		formatted += " "
	}
	return formatted
}

func codeLanguage(pre *html.Node) string {
	for _, n := range []*html.Node{pre, pre.FirstChild} {
		if n == nil || n.Type != html.ElementNode {
			continue
		}
		for _, class := range strings.Fields(attr(n, "class")) {
			for _, prefix := range []string{"language-", "lang-"} {
				if strings.HasPrefix(class, prefix) {
					return strings.TrimPrefix(class, prefix)
				}
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// rawText returns the text under n with whitespace preserved.
func rawText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(rawText(c))
	}
	return sb.String()
}

// collapse turns whitespace runs into a single space, keeping a leading or
// trailing space so adjacent inline nodes stay separated.
func collapse(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

// Package parser discovers the outgoing links of an HTML page.
// Links are resolved against the page (or its <base href>), restricted to
// http and https, stripped of fragments and deduplicated in document order.
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is a link found on a page.
type Link struct {
	URL        string
	AnchorText string
	Rel        string
	External   bool // host differs from the page host
}

// LinkExtractor finds links relative to one page URL.
type LinkExtractor struct {
	pageURL *url.URL
	schemes map[string]bool
}

// NewLinkExtractor returns an extractor for pageURL following http and https links.
func NewLinkExtractor(pageURL string) (*LinkExtractor, error) {
	return NewLinkExtractorWithSchemes(pageURL, []string{"http", "https"})
}

// NewLinkExtractorWithSchemes returns an extractor following only the given schemes.
func NewLinkExtractorWithSchemes(pageURL string, schemes []string) (*LinkExtractor, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("invalid page URL: %q is not absolute", pageURL)
	}

	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}
	allowed := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		allowed[strings.ToLower(strings.TrimSuffix(s, "://"))] = true
	}

	return &LinkExtractor{pageURL: u, schemes: allowed}, nil
}

// Extract parses body and returns its links. A page whose robots meta tag
// says nofollow yields no links.
func (p *LinkExtractor) Extract(body []byte) ([]Link, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	w := &walker{base: p.pageURL, seen: make(map[string]bool)}
	w.findBase(doc)
	w.traverse(doc, p)

	if w.nofollow {
		return nil, nil
	}
	return w.links, nil
}

type walker struct {
	base     *url.URL
	seen     map[string]bool
	links    []Link
	nofollow bool
}

// findBase applies the first <base href> of the document.
func (w *walker) findBase(n *html.Node) bool {
	if n.Type == html.ElementNode && n.DataAtom == atom.Base {
		if href := attr(n, "href"); href != "" {
			if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
				w.base = w.base.ResolveReference(ref)
			}
			return true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if w.findBase(c) {
			return true
		}
	}
	return false
}

func (w *walker) traverse(n *html.Node, p *LinkExtractor) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Meta:
			if strings.EqualFold(attr(n, "name"), "robots") &&
				strings.Contains(strings.ToLower(attr(n, "content")), "nofollow") {
				w.nofollow = true
			}
		case atom.A, atom.Area:
			w.anchor(n, p)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.traverse(c, p)
	}
}

func (w *walker) anchor(n *html.Node, p *LinkExtractor) {
	href := strings.TrimSpace(attr(n, "href"))
	if href == "" || strings.HasPrefix(href, "#") {
		return
	}

	ref, err := url.Parse(href)
	if err != nil {
		return
	}
	resolved := w.base.ResolveReference(ref)
	if !p.schemes[strings.ToLower(resolved.Scheme)] || resolved.Host == "" {
		return
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""

	target := resolved.String()
	if w.seen[target] {
		return
	}
	w.seen[target] = true

	w.links = append(w.links, Link{
		URL:        target,
		AnchorText: extractText(n),
		Rel:        attr(n, "rel"),
		External:   !strings.EqualFold(resolved.Host, p.pageURL.Host),
	})
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// extractText joins the text under n with single spaces.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := extractText(c); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

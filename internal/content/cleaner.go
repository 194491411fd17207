// Package content turns a fetched HTML page into clean material for a skill
// document. It strips page chrome from the HTML before conversion, scrubs
// the converted Markdown, and extracts the page title and description.
package content

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// structuralSelector matches elements that never carry documentation content.
const structuralSelector = "script, style, noscript, template, nav, header, footer, aside, " +
	"iframe, svg, canvas, video, audio, form, button"

// noiseNames are matched against whole id and class values, and as the
// leading word of a hyphen or underscore separated value (sidebar-left).
var noiseNames = map[string]bool{
	"cookie": true, "cookies": true, "consent": true, "banner": true, "popup": true,
	"modal": true, "overlay": true, "gdpr": true, "feedback": true, "newsletter": true,
	"subscribe": true, "nav": true, "navbar": true, "navigation": true, "menu": true,
	"sidebar": true, "toc": true, "breadcrumb": true, "breadcrumbs": true, "ads": true,
	"advertisement": true, "promo": true, "rating": true, "helpful": true, "social": true,
	"share": true, "skip-link": true, "sr-only": true, "visually-hidden": true,
	"page-meta": true, "last-updated": true, "edit-page": true, "table-of-contents": true,
}

// iconClasses mark icon-font markup whose text is a ligature name.
var iconClasses = map[string]bool{
	"material-icons": true, "material-icons-outlined": true, "material-symbols": true,
	"material-symbols-outlined": true, "material-symbols-rounded": true, "icon": true,
	"fa": true, "fas": true, "far": true, "fab": true, "glyphicon": true,
}

// protected elements are never dropped by the id/class heuristics.
var protected = map[string]bool{"html": true, "head": true, "body": true, "main": true, "article": true}

// contentSelector marks the primary content of a page. Wrappers around it
// are kept whatever their class says.
const contentSelector = "main, article, [role='main']"

// Cleaner removes page chrome from HTML documents.
type Cleaner struct {
	selectors []cascadia.Selector
}

// NewCleaner compiles the removal selectors. Selectors that do not compile
// are logged and skipped; configuration validation reports them earlier.
func NewCleaner(selectors []string) *Cleaner {
	c := &Cleaner{}
	for _, s := range selectors {
		sel, err := cascadia.Compile(s)
		if err != nil {
			slog.Warn("Skipping invalid remove selector", "selector", s, "error", err)
			continue
		}
		c.selectors = append(c.selectors, sel)
	}
	return c
}

// Parse parses raw HTML leniently. Malformed markup is repaired by the
// HTML5 parsing algorithm rather than rejected.
func Parse(rawHTML string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
}

// cleanHTML parses rawHTML and returns the cleaned body markup. A document
// that cannot be parsed is returned unchanged.
func (c *Cleaner) cleanHTML(rawHTML string) string {
	doc, err := Parse(rawHTML)
	if err != nil {
		slog.Debug("HTML parse failed, using raw markup", "error", err)
		return rawHTML
	}
	return c.Clean(doc)
}

// Clean strips noise from doc in place and returns the body markup.
func (c *Cleaner) Clean(doc *goquery.Document) string {
	removeComments(doc.Nodes...)

	doc.Find(structuralSelector).Remove()

	for _, sel := range c.selectors {
		doc.FindMatcher(sel).Remove()
	}

	doc.Find("a[href^='#']").Each(func(_ int, s *goquery.Selection) {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s.Text())), "skip") {
			s.Remove()
		}
	})

	doc.Find("i[class], span[class]").Each(func(_ int, s *goquery.Selection) {
		if isIcon(s) {
			s.Remove()
		}
	})

	bodyText := textLength(doc.Find("body"))
	doc.Find("[id], [class]").Each(func(_ int, s *goquery.Selection) {
		if protected[goquery.NodeName(s)] || s.Is("[role='main']") {
			return
		}
		id, _ := s.Attr("id")
		class, _ := s.Attr("class")
		if !isNoise(id) && !isNoise(class) {
			return
		}
		if wrapsContent(s, bodyText) {
			return
		}
		s.Remove()
	})

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			stripDataAttrs(n)
		}
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	out, err := body.Html()
	if err != nil {
		slog.Debug("HTML render failed", "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}

// isNoise reports whether an id or class attribute names page chrome.
func isNoise(value string) bool {
	for _, token := range strings.Fields(strings.ToLower(value)) {
		if noiseNames[token] {
			return true
		}
		for name := range noiseNames {
			if strings.HasPrefix(token, name+"-") || strings.HasPrefix(token, name+"_") {
				return true
			}
		}
	}
	return false
}

// wrapsContent reports whether s holds the page's main content: a main or
// article element, or at least half of the body text.
func wrapsContent(s *goquery.Selection, bodyText int) bool {
	if s.Find(contentSelector).Length() > 0 {
		return true
	}
	return bodyText > 0 && 2*textLength(s) >= bodyText
}

func textLength(s *goquery.Selection) int {
	return len(strings.Join(strings.Fields(s.Text()), " "))
}

func isIcon(s *goquery.Selection) bool {
	class, _ := s.Attr("class")
	for _, c := range strings.Fields(strings.ToLower(class)) {
		if iconClasses[c] || strings.HasPrefix(c, "fa-") || strings.HasPrefix(c, "icon-") ||
			strings.HasPrefix(c, "material-symbols") || strings.HasPrefix(c, "glyphicon-") {
			// Only decorative markup: a short ligature or nothing at all
			return len(strings.Fields(s.Text())) <= 1
		}
	}
	return false
}

func removeComments(nodes ...*html.Node) {
	for _, n := range nodes {
		var next *html.Node
		for child := n.FirstChild; child != nil; child = next {
			next = child.NextSibling
			if child.Type == html.CommentNode {
				n.RemoveChild(child)
				continue
			}
			removeComments(child)
		}
	}
}

func stripDataAttrs(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.HasPrefix(a.Key, "data-") {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

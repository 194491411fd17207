package content

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxDescriptionLength bounds the description, in characters.
	MaxDescriptionLength = 1024

	paragraphMinLength = 50
	paragraphMaxLength = 200
	untitled           = "Untitled"
)

// Metadata describes a page for its skill document.
type Metadata struct {
	Title        string
	Description  string
	CanonicalURL string
}

// ExtractMetadata reads the title, description and canonical URL of doc.
// It must run before Clean, which drops the elements it reads.
func ExtractMetadata(doc *goquery.Document, pageURL string) Metadata {
	md := Metadata{
		Title:        extractTitle(doc),
		Description:  TruncateDescription(collapse(metaDescription(doc)), MaxDescriptionLength),
		CanonicalURL: canonicalURL(doc, pageURL),
	}
	return md
}

// FirstParagraph returns the first paragraph long enough to describe the
// page, cut to a short summary. It is the description fallback.
func FirstParagraph(doc *goquery.Document) string {
	var found string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapse(s.Text())
		if len([]rune(text)) > paragraphMinLength {
			found = TruncateDescription(text, paragraphMaxLength)
			return false
		}
		return true
	})
	return found
}

func extractTitle(doc *goquery.Document) string {
	if title := collapse(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := collapse(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return untitled
}

func metaDescription(doc *goquery.Document) string {
	var desc, og string
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		if name, ok := s.Attr("name"); ok && strings.EqualFold(name, "description") && desc == "" {
			desc = content
		}
		if prop, ok := s.Attr("property"); ok && strings.EqualFold(prop, "og:description") && og == "" {
			og = content
		}
	})
	if strings.TrimSpace(desc) != "" {
		return desc
	}
	return og
}

func canonicalURL(doc *goquery.Document, pageURL string) string {
	page, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	page.Fragment = ""
	page.RawFragment = ""

	doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !strings.EqualFold(strings.TrimSpace(rel), "canonical") {
			return true
		}
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil || href == "" {
			return false
		}
		resolved := page.ResolveReference(ref)
		if (resolved.Scheme == "http" || resolved.Scheme == "https") && resolved.Host == page.Host {
			resolved.Fragment = ""
			resolved.RawFragment = ""
			page = resolved
		}
		return false
	})

	return page.String()
}

// TruncateDescription shortens s to at most limit characters. It prefers to
// end after a sentence that covers at least half the limit, then at a word
// boundary followed by "...".
func TruncateDescription(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	window := runes[:limit]
	for i := len(window) - 1; i >= limit/2; i-- {
		if strings.ContainsRune(".!?", window[i]) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			return string(window[:i+1])
		}
	}

	const ellipsis = "..."
	window = runes[:limit-len(ellipsis)]
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return strings.TrimRightFunc(string(window[:i]), unicode.IsSpace) + ellipsis
		}
	}
	return string(window) + ellipsis
}

// collapse joins whitespace runs, newlines included, into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

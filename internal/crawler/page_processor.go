package crawler

import (
	"fmt"
	"log/slog"

	"github.com/masahif/docskills/internal/content"
)

// PageProcessor turns a fetched HTML page into cleaned Markdown and the
// metadata of its skill document.
type PageProcessor struct {
	cleaner    *content.Cleaner
	transcoder Transcoder
}

// NewPageProcessor returns a processor removing selectors before handing the
// page to transcoder.
func NewPageProcessor(selectors []string, transcoder Transcoder) *PageProcessor {
	return &PageProcessor{
		cleaner:    content.NewCleaner(selectors),
		transcoder: transcoder,
	}
}

// Process cleans page and converts it. Malformed HTML is repaired by the
// parser; only a transcoder failure is an error.
func (p *PageProcessor) Process(page *FetchedPage) (*ProcessedPage, error) {
	pageURL := page.FinalURL
	if pageURL == "" {
		pageURL = page.URL
	}

	doc, err := content.Parse(string(page.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	md := content.ExtractMetadata(doc, pageURL)
	if md.Description == "" {
		md.Description = content.FirstParagraph(doc)
	}

	cleaned := p.cleaner.Clean(doc)
	markdown, err := p.transcoder.Convert(cleaned, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", pageURL, err)
	}
	markdown = content.CleanMarkdown(markdown)
	content.WarnIfLarge(pageURL, markdown)

	slog.Debug("Processed page", "url", pageURL, "title", md.Title, "markdown_len", len(markdown))
	return &ProcessedPage{
		Metadata:    md,
		CleanedHTML: cleaned,
		Markdown:    markdown,
	}, nil
}

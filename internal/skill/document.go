package skill

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/masahif/docskills/internal/content"
)

// FrontMatter is the metadata block at the top of a skill document.
type FrontMatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Metadata    Metadata `yaml:"metadata"`
}

// Metadata holds the nested front matter fields.
type Metadata struct {
	URL string `yaml:"url"`
}

// Document is an assembled skill document.
type Document struct {
	FrontMatter FrontMatter
	Title       string
	Body        string
}

// NewDocument assembles the document for a named page. The description is
// flattened to one line and bounded to content.MaxDescriptionLength.
func NewDocument(name string, page Page) Document {
	desc := strings.Join(strings.Fields(page.Description), " ")
	return Document{
		FrontMatter: FrontMatter{
			Name:        name,
			Description: content.TruncateDescription(desc, content.MaxDescriptionLength),
			Metadata:    Metadata{URL: page.SourceURL()},
		},
		Title: strings.Join(strings.Fields(page.Title), " "),
		Body:  strings.TrimSpace(page.Markdown),
	}
}

// Render encodes the document: the front matter between "---" lines, a blank
// line, the H1 title, a blank line and the body.
func (d Document) Render() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.FrontMatter); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	buf.WriteString("---\n\n# ")
	buf.WriteString(d.Title)
	buf.WriteString("\n\n")
	if d.Body != "" {
		buf.WriteString(d.Body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// ParseFrontMatter reads the front matter of a rendered document. ok is false
// when data does not start with a front matter block.
func ParseFrontMatter(data []byte) (fm FrontMatter, ok bool, err error) {
	rest, found := bytes.CutPrefix(data, []byte("---\n"))
	if !found {
		return fm, false, nil
	}
	block, _, found := bytes.Cut(rest, []byte("\n---\n"))
	if !found {
		return fm, false, nil
	}
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return fm, true, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return fm, true, nil
}

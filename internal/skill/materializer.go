package skill

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// SkillFile is the document name inside a nested skill directory.
const SkillFile = "SKILL.md"

// Page is the processed content of one fetched page.
type Page struct {
	URL          string
	CanonicalURL string
	Title        string
	Description  string
	Markdown     string
}

// SourceURL is the URL recorded in the front matter.
func (p Page) SourceURL() string {
	if p.CanonicalURL != "" {
		return p.CanonicalURL
	}
	return p.URL
}

// Artifact is a materialized skill document.
type Artifact struct {
	Name    string
	Path    string
	URL     string
	Content []byte
}

// Sink receives finished artifacts.
type Sink interface {
	Write(ctx context.Context, a *Artifact) error
}

// Materializer names, assembles and writes skill documents. Names are unique
// per Materializer: a name already taken by another URL is disambiguated.
type Materializer struct {
	root string
	flat bool
	sink Sink

	mu    sync.Mutex
	names map[string]string
}

// NewMaterializer returns a Materializer writing under root through sink.
// flat selects <root>/<name>.md over <root>/<name>/SKILL.md.
func NewMaterializer(root string, flat bool, sink Sink) *Materializer {
	return &Materializer{
		root:  root,
		flat:  flat,
		sink:  sink,
		names: make(map[string]string),
	}
}

// Build assembles the artifact for page without writing it.
func (m *Materializer) Build(page Page) (*Artifact, error) {
	name := m.reserve(DeriveName(page.URL), page.URL)

	data, err := NewDocument(name, page).Render()
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Name:    name,
		Path:    m.PathFor(name),
		URL:     page.URL,
		Content: data,
	}, nil
}

// Materialize assembles the artifact for page and hands it to the sink.
func (m *Materializer) Materialize(ctx context.Context, page Page) (*Artifact, error) {
	a, err := m.Build(page)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.sink.Write(ctx, a); err != nil {
		return a, fmt.Errorf("failed to write %s: %w", a.Path, err)
	}
	return a, nil
}

// Preload marks names assigned to URLs by an earlier run, so a later page
// never takes a name that already belongs to another URL.
func (m *Materializer) Preload(names map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, rawURL := range names {
		m.names[name] = rawURL
	}
}

// PathFor returns the file path of a named skill.
func (m *Materializer) PathFor(name string) string {
	if m.flat {
		return filepath.Join(m.root, name+".md")
	}
	return filepath.Join(m.root, name, SkillFile)
}

// reserve claims name for rawURL. The same URL always gets the same name.
func (m *Materializer) reserve(name, rawURL string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate := name
	for attempt := 0; ; attempt++ {
		owner, taken := m.names[candidate]
		if !taken || owner == rawURL {
			m.names[candidate] = rawURL
			return candidate
		}
		seed := rawURL
		if attempt > 0 {
			seed = fmt.Sprintf("%s#%d", rawURL, attempt)
		}
		candidate = Disambiguate(name, seed)
	}
}

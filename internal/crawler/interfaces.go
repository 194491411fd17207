package crawler

import (
	"context"

	"github.com/masahif/docskills/internal/fetch"
	"github.com/masahif/docskills/internal/skill"
	"github.com/masahif/docskills/internal/storage"
)

// Fetcher downloads a page and reports the links it contains.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// RobotsSource retrieves robots.txt files.
type RobotsSource interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Transcoder converts cleaned HTML to Markdown.
type Transcoder interface {
	Convert(cleanedHTML, pageURL string) (string, error)
}

// Materializer turns a processed page into a written skill.
type Materializer interface {
	Materialize(ctx context.Context, page skill.Page) (*skill.Artifact, error)
	// Preload reserves names written by an earlier run, keyed by name.
	Preload(names map[string]string)
}

// Checkpointer persists crawl progress for --resume.
type Checkpointer interface {
	Load(ctx context.Context) (*storage.Snapshot, error)
	Reset(ctx context.Context) error
	MarkVisited(ctx context.Context, url, status, name string) error
	SaveSnapshot(ctx context.Context, snap *storage.Snapshot) error
}

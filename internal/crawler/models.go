package crawler

import (
	"time"

	"github.com/masahif/docskills/internal/content"
	"github.com/masahif/docskills/internal/skill"
)

// State is a crawl run's lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateSeeding
	StateRunning
	StateDraining
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeding:
		return "seeding"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Decision is the admission verdict for a frontier URL.
type Decision int

const (
	Admit Decision = iota
	RejectRule
	RejectDuplicate
	RejectDepth
	RejectSubdomain
	RejectRobots
)

func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case RejectRule:
		return "rule"
	case RejectDuplicate:
		return "duplicate"
	case RejectDepth:
		return "depth"
	case RejectSubdomain:
		return "host"
	case RejectRobots:
		return "robots"
	default:
		return "unknown"
	}
}

// URLItem is a frontier entry.
type URLItem struct {
	URL          string
	Depth        int
	DiscoveredAt time.Time
}

// FetchedPage is a downloaded page at its crawl depth.
type FetchedPage struct {
	URL          string
	FinalURL     string
	StatusCode   int
	Body         []byte
	Links        []string
	Depth        int
	DiscoveredAt time.Time
}

// ProcessedPage is a cleaned and converted page ready to materialize.
type ProcessedPage struct {
	Metadata    content.Metadata
	CleanedHTML string
	Markdown    string
}

// SkillPage is the materializer input for the page fetched from url.
func (p *ProcessedPage) SkillPage(url string) skill.Page {
	return skill.Page{
		URL:          url,
		CanonicalURL: p.Metadata.CanonicalURL,
		Title:        p.Metadata.Title,
		Description:  p.Metadata.Description,
		Markdown:     p.Markdown,
	}
}

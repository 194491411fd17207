package crawler

import (
	"sync"
	"time"

	"github.com/masahif/docskills/internal/storage"
)

type outcome int

const (
	outcomeWritten outcome = iota
	outcomeFailed
	outcomeSkipped
)

// CrawlState is the mutable state of one crawl: visited set, frontier,
// in-flight pages and statistics. All methods are safe for concurrent use
// and hold the lock only for the update itself.
type CrawlState struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	visited  map[string]struct{}
	frontier []URLItem
	inflight map[string]URLItem
	rejected map[string]struct{}
	claimed  int
	stats    Stats
}

// NewCrawlState returns an empty state.
func NewCrawlState() *CrawlState {
	return &CrawlState{
		seen:     make(map[string]struct{}),
		visited:  make(map[string]struct{}),
		inflight: make(map[string]URLItem),
		rejected: make(map[string]struct{}),
	}
}

// Push appends a newly discovered URL to the frontier. A URL already seen
// in this crawl is ignored and Push returns false.
func (s *CrawlState) Push(item URLItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[item.URL]; ok {
		return false
	}
	if item.DiscoveredAt.IsZero() {
		item.DiscoveredAt = time.Now()
	}
	s.seen[item.URL] = struct{}{}
	s.frontier = append(s.frontier, item)
	s.stats.Discovered++
	return true
}

// Next pops the oldest frontier entry. When the frontier is empty, idle
// reports whether no page is in flight either, which means the crawl is done.
func (s *CrawlState) Next() (item URLItem, ok bool, idle bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.frontier) == 0 {
		return URLItem{}, false, len(s.inflight) == 0
	}
	item = s.frontier[0]
	s.frontier = s.frontier[1:]
	return item, true, false
}

// Requeue puts an unprocessed entry back at the head of the frontier.
func (s *CrawlState) Requeue(item URLItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frontier = append([]URLItem{item}, s.frontier...)
}

// IsVisited reports whether url was claimed in this or a resumed crawl.
func (s *CrawlState) IsVisited(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visited[url]
	return ok
}

// Claim marks item visited and in flight. It returns false when the URL was
// already visited, making repeated claims no-ops.
func (s *CrawlState) Claim(item URLItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visited[item.URL]; ok {
		return false
	}
	s.visited[item.URL] = struct{}{}
	s.inflight[item.URL] = item
	s.claimed++
	return true
}

// Complete records the outcome of a claimed page.
func (s *CrawlState) Complete(url string, o outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, url)
	s.stats.Visited++
	switch o {
	case outcomeWritten:
		s.stats.Written++
	case outcomeFailed:
		s.stats.Failed++
	case outcomeSkipped:
		s.stats.SkippedByPolicy++
	}
}

// Release returns a claimed page that was cancelled before finishing to the
// frontier, so a resumed crawl picks it up again.
func (s *CrawlState) Release(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.inflight[url]
	if !ok {
		return
	}
	delete(s.inflight, url)
	delete(s.visited, url)
	s.claimed--
	s.frontier = append([]URLItem{item}, s.frontier...)
}

// Skip records a URL rejected at admission. Duplicates are not counted.
// Rejected URLs are kept in snapshots so a resumed crawl does not count
// them again.
func (s *CrawlState) Skip(url string, d Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch d {
	case RejectRule:
		s.stats.SkippedByRule++
	case RejectDepth, RejectSubdomain, RejectRobots:
		s.stats.SkippedByPolicy++
	default:
		return
	}
	s.rejected[url] = struct{}{}
}

// Claimed is the number of pages admitted in this run.
func (s *CrawlState) Claimed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claimed
}

// InFlight is the number of claimed pages still being processed.
func (s *CrawlState) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Pending is the frontier size.
func (s *CrawlState) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frontier)
}

// Stats returns a snapshot of the counters.
func (s *CrawlState) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Restore loads a checkpoint: its visited URLs are never claimed again, its
// rejected URLs are not reconsidered, its frontier is queued and its
// statistics are continued.
func (s *CrawlState) Restore(snap *storage.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, url := range snap.Visited {
		s.visited[url] = struct{}{}
		s.seen[url] = struct{}{}
	}
	for _, url := range snap.Rejected {
		s.rejected[url] = struct{}{}
		s.seen[url] = struct{}{}
	}
	for _, f := range snap.Frontier {
		if _, ok := s.seen[f.URL]; ok {
			continue
		}
		s.seen[f.URL] = struct{}{}
		s.frontier = append(s.frontier, URLItem{URL: f.URL, Depth: f.Depth, DiscoveredAt: f.DiscoveredAt})
	}
	s.stats = statsFromCounters(snap.Stats)
}

// Snapshot captures the resumable state. In-flight pages are saved as
// frontier entries since they have not finished.
func (s *CrawlState) Snapshot(runID string) *storage.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &storage.Snapshot{
		RunID: runID,
		Stats: s.stats.counters(),
	}
	for _, item := range s.inflight {
		snap.Frontier = append(snap.Frontier, frontierItem(item))
	}
	for _, item := range s.frontier {
		snap.Frontier = append(snap.Frontier, frontierItem(item))
	}
	for url := range s.visited {
		if _, ok := s.inflight[url]; !ok {
			snap.Visited = append(snap.Visited, url)
		}
	}
	for url := range s.rejected {
		snap.Rejected = append(snap.Rejected, url)
	}
	return snap
}

func frontierItem(item URLItem) storage.FrontierItem {
	return storage.FrontierItem{URL: item.URL, Depth: item.Depth, DiscoveredAt: item.DiscoveredAt}
}

// Package crawler provides the crawl orchestrator.
// It admits frontier URLs through the rule engine and politeness checks,
// processes at most a configured number of pages concurrently and records
// progress so an interrupted crawl can be resumed.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/masahif/docskills/internal/config"
	"github.com/masahif/docskills/internal/fetch"
	"github.com/masahif/docskills/internal/rules"
	"github.com/masahif/docskills/internal/skill"
	"github.com/masahif/docskills/internal/storage"
)

const (
	statsInterval   = 10 * time.Second
	snapshotTimeout = 30 * time.Second
)

// Deps are the collaborators of a Crawler. Checkpoint and Robots may be nil.
type Deps struct {
	Fetcher      Fetcher
	Materializer Materializer
	Transcoder   Transcoder
	Checkpoint   Checkpointer
	Robots       RobotsSource
}

// Options are per-run settings not held in the configuration file.
type Options struct {
	MaxPages int // zero means unlimited
	DryRun   bool
	Resume   bool
}

// Crawler runs crawls for one configuration.
type Crawler struct {
	config       *config.Config
	opts         Options
	filter       *rules.Filter
	fetcher      Fetcher
	materializer Materializer
	checkpoint   Checkpointer
	processor    *PageProcessor
	limiter      *RateLimiter
	robots       *RobotsCache

	runID  string
	logger *slog.Logger

	phaseMu sync.Mutex
	phase   State
}

// NewCrawler creates a crawler. The configuration must already be validated.
func NewCrawler(cfg *config.Config, deps Deps, opts Options) (*Crawler, error) {
	if deps.Fetcher == nil || deps.Materializer == nil || deps.Transcoder == nil {
		return nil, errors.New("crawler requires a fetcher, a transcoder and a materializer")
	}

	filter, err := cfg.Filter()
	if err != nil {
		return nil, err
	}

	c := &Crawler{
		config:       cfg,
		opts:         opts,
		filter:       filter,
		fetcher:      deps.Fetcher,
		materializer: deps.Materializer,
		checkpoint:   deps.Checkpoint,
		processor:    NewPageProcessor(cfg.RemoveSelectors, deps.Transcoder),
		limiter:      NewRateLimiter(cfg.Delay()),
		logger:       slog.Default(),
		phase:        StateIdle,
	}
	if opts.DryRun {
		c.checkpoint = nil
	}

	if cfg.RespectRobotsTxt && deps.Robots != nil {
		c.robots = NewRobotsCache(deps.Robots, cfg.Agent(), c.applyCrawlDelay)
	}

	return c, nil
}

// Phase returns the current state of the run.
func (c *Crawler) Phase() State {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	return c.phase
}

// RunID identifies the latest run in logs and in the checkpoint.
func (c *Crawler) RunID() string {
	return c.runID
}

func (c *Crawler) setPhase(s State) {
	c.phaseMu.Lock()
	c.phase = s
	c.phaseMu.Unlock()
	c.logger.Debug("Crawl phase", "phase", s.String())
}

// Run crawls from seeds until the frontier is exhausted, the max-page
// ceiling is reached or ctx is cancelled. The returned statistics are valid
// even when the run aborts; the error then wraps ErrAborted.
func (c *Crawler) Run(ctx context.Context, seeds []string) (Stats, error) {
	c.runID = uuid.NewString()
	c.logger = slog.Default().With("run_id", c.runID)

	c.setPhase(StateSeeding)
	state := NewCrawlState()
	normalized, err := c.seed(ctx, state, seeds)
	if err != nil {
		c.setPhase(StateAborted)
		return state.Stats(), fmt.Errorf("%w: %w", ErrAborted, err)
	}

	politeness := NewPoliteness(state, normalized, c.config.MaxDepth, c.config.Subdomains, c.robots)

	c.setPhase(StateRunning)
	c.logger.Info("Starting crawl", "seeds", len(normalized), "pending", state.Pending(),
		"concurrency", c.config.Concurrency, "max_pages", c.opts.MaxPages, "dry_run", c.opts.DryRun)

	reporterCtx, stopReporter := context.WithCancel(ctx)
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		c.statsReporter(reporterCtx, state)
	}()

	g, gctx := errgroup.WithContext(ctx)
	c.dispatch(gctx, g, state, politeness)
	runErr := g.Wait()

	c.setPhase(StateDraining)
	stopReporter()
	<-reporterDone
	c.saveSnapshot(state)

	stats := state.Stats()
	switch {
	case runErr != nil:
		c.setPhase(StateAborted)
		c.logger.Error("Crawl aborted", "error", runErr)
		return stats, fmt.Errorf("%w: %w", ErrAborted, runErr)
	case ctx.Err() != nil:
		c.setPhase(StateAborted)
		c.logger.Warn("Crawl interrupted", "pending", state.Pending())
		return stats, fmt.Errorf("%w: %w", ErrAborted, ctx.Err())
	}

	c.setPhase(StateCompleted)
	c.logger.Info("Crawling completed", "written", stats.Written, "failed", stats.Failed)
	return stats, nil
}

// seed fills the frontier, from the checkpoint when resuming.
func (c *Crawler) seed(ctx context.Context, state *CrawlState, seeds []string) ([]string, error) {
	normalized := make([]string, 0, len(seeds))
	for _, raw := range seeds {
		u, err := rules.NormalizeSeed(raw)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, u)
	}
	if len(normalized) == 0 {
		return nil, errors.New("no seed URLs")
	}

	if c.checkpoint != nil {
		if c.opts.Resume {
			snap, err := c.checkpoint.Load(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load checkpoint: %w", err)
			}
			state.Restore(snap)
			c.materializer.Preload(snap.Names)
			c.logger.Info("Resuming crawl", "visited", len(snap.Visited), "frontier", len(snap.Frontier), "previous_run", snap.RunID)
		} else if err := c.checkpoint.Reset(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset checkpoint: %w", err)
		}
	} else if c.opts.Resume {
		c.logger.Warn("Resume requested without a checkpoint store, starting fresh")
	}

	if state.Pending() == 0 {
		for _, u := range normalized {
			state.Push(URLItem{URL: u, Depth: 0})
		}
	}
	return normalized, nil
}

// dispatch admits frontier URLs and starts a processing task for each, at
// most Concurrency at a time. It returns when nothing is left to dispatch.
func (c *Crawler) dispatch(ctx context.Context, g *errgroup.Group, state *CrawlState, politeness *Politeness) {
	sem := semaphore.NewWeighted(int64(c.config.Concurrency))
	wake := make(chan struct{}, 1)
	notify := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if c.opts.MaxPages > 0 && state.Claimed() >= c.opts.MaxPages {
			c.logger.Info("Reached max pages", "max_pages", c.opts.MaxPages)
			return
		}

		item, ok, idle := state.Next()
		if !ok {
			if idle {
				return
			}
			select {
			case <-wake:
			case <-ctx.Done():
				return
			}
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			state.Requeue(item)
			return
		}

		if d := c.admit(ctx, politeness, item); d != Admit {
			c.logger.Debug("Skipping URL", "url", item.URL, "reason", d.String(), "depth", item.Depth)
			state.Skip(item.URL, d)
			sem.Release(1)
			continue
		}
		if !state.Claim(item) {
			sem.Release(1)
			continue
		}

		g.Go(func() error {
			defer notify()
			defer sem.Release(1)
			return c.visit(ctx, state, item)
		})
	}
}

func (c *Crawler) admit(ctx context.Context, politeness *Politeness, item URLItem) Decision {
	if !c.filter.Admit(item.URL) {
		return RejectRule
	}
	return politeness.ShouldVisit(ctx, item)
}

// visit fetches, processes and materializes one claimed page. Only a
// structural materialization error is returned; it aborts the run.
func (c *Crawler) visit(ctx context.Context, state *CrawlState, item URLItem) error {
	if err := c.limiter.Wait(ctx, item.URL); err != nil {
		state.Release(item.URL)
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout())
	defer cancel()

	page, err := c.fetcher.Fetch(fetchCtx, item.URL)
	if err != nil {
		if ctx.Err() != nil {
			state.Release(item.URL)
			return nil
		}
		if errors.Is(err, fetch.ErrNotHTML) {
			c.logger.Debug("Skipping non-HTML page", "url", item.URL)
			c.finish(ctx, state, item.URL, outcomeSkipped, "")
			return nil
		}
		ferr := newFetchError(item.URL, err)
		c.logger.Warn("Failed to fetch page", "url", item.URL, "status_code", ferr.StatusCode, "error", ferr.Err)
		c.finish(ctx, state, item.URL, outcomeFailed, "")
		return nil
	}

	for _, link := range page.Links {
		state.Push(URLItem{URL: link, Depth: item.Depth + 1})
	}

	fetched := &FetchedPage{
		URL:          item.URL,
		FinalURL:     page.FinalURL,
		StatusCode:   page.StatusCode,
		Body:         page.Body,
		Links:        page.Links,
		Depth:        item.Depth,
		DiscoveredAt: item.DiscoveredAt,
	}
	artifact, err := c.process(ctx, fetched)
	if err != nil {
		var merr *MaterializeError
		if errors.As(err, &merr) && merr.Structural {
			c.logger.Error("Output is not writable", "url", item.URL, "path", merr.Path, "error", merr.Err)
			c.finish(ctx, state, item.URL, outcomeFailed, "")
			return merr
		}
		if ctx.Err() != nil {
			state.Release(item.URL)
			return nil
		}
		c.logger.Warn("Failed to process page", "url", item.URL, "error", err)
		c.finish(ctx, state, item.URL, outcomeFailed, "")
		return nil
	}

	c.logger.Info("Wrote skill", "url", item.URL, "name", artifact.Name, "path", artifact.Path, "depth", item.Depth, "links", len(page.Links))
	c.finish(ctx, state, item.URL, outcomeWritten, artifact.Name)
	return nil
}

// process converts a fetched page and materializes it.
func (c *Crawler) process(ctx context.Context, page *FetchedPage) (*skill.Artifact, error) {
	processed, err := c.processor.Process(page)
	if err != nil {
		return nil, err
	}

	pageURL := page.FinalURL
	if pageURL == "" {
		pageURL = page.URL
	}
	artifact, err := c.materializer.Materialize(ctx, processed.SkillPage(pageURL))
	if err != nil {
		merr := &MaterializeError{URL: pageURL, Structural: skill.IsStructural(err), Err: err}
		if artifact != nil {
			merr.Path = artifact.Path
		}
		return nil, merr
	}
	return artifact, nil
}

// finish records a page outcome in the state and the checkpoint.
func (c *Crawler) finish(ctx context.Context, state *CrawlState, pageURL string, o outcome, name string) {
	state.Complete(pageURL, o)
	if c.checkpoint == nil {
		return
	}

	status := storage.StatusWritten
	switch o {
	case outcomeFailed:
		status = storage.StatusFailed
	case outcomeSkipped:
		status = storage.StatusSkipped
	}
	if err := c.checkpoint.MarkVisited(context.WithoutCancel(ctx), pageURL, status, name); err != nil {
		c.logger.Warn("Failed to record visited URL", "url", pageURL, "error", err)
	}
}

// applyCrawlDelay widens the spacing for host to a robots.txt Crawl-delay.
func (c *Crawler) applyCrawlDelay(host string, delay time.Duration) {
	c.limiter.SetDomainDelay(host, delay)
	c.logger.Info("Applying robots.txt crawl delay", "host", host, "crawl_delay", delay, "effective_delay", c.limiter.DomainDelay(host))
}

func (c *Crawler) saveSnapshot(state *CrawlState) {
	if c.checkpoint == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	snap := state.Snapshot(c.runID)
	if err := c.checkpoint.SaveSnapshot(ctx, snap); err != nil {
		c.logger.Error("Failed to save checkpoint", "error", err)
		return
	}
	c.logger.Debug("Saved checkpoint", "visited", len(snap.Visited), "frontier", len(snap.Frontier))
}

// statsReporter periodically reports crawling statistics
func (c *Crawler) statsReporter(ctx context.Context, state *CrawlState) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := state.Stats()
			c.logger.Info("Crawling stats",
				"discovered", stats.Discovered,
				"visited", stats.Visited,
				"written", stats.Written,
				"skipped", stats.Skipped(),
				"failed", stats.Failed,
				"pending", state.Pending(),
				"in_flight", state.InFlight(),
				"duration", time.Since(start).Round(time.Second))
		}
	}
}

// Single fetches one page and materializes it without traversal or
// politeness checks.
func (c *Crawler) Single(ctx context.Context, rawURL string) (*skill.Artifact, error) {
	u, err := rules.NormalizeSeed(rawURL)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout())
	defer cancel()

	page, err := c.fetcher.Fetch(fetchCtx, u)
	if err != nil {
		return nil, newFetchError(u, err)
	}

	return c.process(ctx, &FetchedPage{
		URL:        u,
		FinalURL:   page.FinalURL,
		StatusCode: page.StatusCode,
		Body:       page.Body,
		Links:      page.Links,
	})
}

func newFetchError(pageURL string, err error) *FetchError {
	ferr := &FetchError{URL: pageURL, Err: err}
	var se *fetch.StatusError
	if errors.As(err, &se) {
		ferr.StatusCode = se.StatusCode
	}
	return ferr
}

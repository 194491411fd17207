package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/masahif/docskills/internal/crawler"
	"github.com/masahif/docskills/internal/fetch"
	"github.com/masahif/docskills/internal/rules"
	"github.com/masahif/docskills/internal/skill"
	"github.com/masahif/docskills/internal/storage"
	"github.com/masahif/docskills/internal/transcode"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <URL...>",
	Short: "Crawl documentation sites and write a skill per page",
	Long: `Crawl starts at each URL and follows links below it, writing one skill
per HTML page. A URL ending in a wildcard, such as https://x.com/ui/*, limits
the crawl to matching pages.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCrawl,
}

func init() {
	f := crawlCmd.Flags()
	f.IntP("max-pages", "m", 0, "stop after N pages (0=unlimited)")
	f.IntP("delay", "d", 100, "delay between requests to the same host, in milliseconds")
	f.Int("depth", 25, "maximum link depth from the seed")
	f.Bool("subdomains", false, "follow links to subdomains of the seed host")
	f.Bool("dry-run", false, "process pages but write nothing")
	f.Bool("resume", false, "continue the previous crawl of this output directory")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	err := bindFlags(cmd, map[string]string{
		"delay_ms":   "delay",
		"max_depth":  "depth",
		"subdomains": "subdomains",
	})
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	maxPages, _ := cmd.Flags().GetInt("max-pages")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	resume, _ := cmd.Flags().GetBool("resume")

	seeds, scoped := rules.ScopeSeeds(args, cfg.Rules)
	cfg.Rules = scoped

	root, err := cfg.OutputDir()
	if err != nil {
		return err
	}

	client := fetch.NewClient(cfg.Agent(), cfg.RequestTimeout())
	defer client.Close()

	var sink skill.Sink = skill.NewFileSink(root)
	var checkpoint crawler.Checkpointer
	if dryRun {
		sink = skill.DryRunSink{}
	} else {
		path, err := checkpointPath(cfg, root)
		if err != nil {
			return err
		}
		store, err := storage.NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to open checkpoint: %w", err)
		}
		defer func() { _ = store.Close() }()
		checkpoint = store
	}

	c, err := crawler.NewCrawler(cfg, crawler.Deps{
		Fetcher:      fetch.NewHTTPFetcher(client),
		Materializer: skill.NewMaterializer(root, cfg.Flat, sink),
		Transcoder:   transcode.NewConverter(),
		Checkpoint:   checkpoint,
		Robots:       client,
	}, crawler.Options{
		MaxPages: maxPages,
		DryRun:   dryRun,
		Resume:   resume,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize crawler: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Crawling", "seeds", seeds, "output", root, "dry_run", dryRun, "resume", resume)
	stats, err := c.Run(ctx, seeds)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, stats.Summary())
	if dryRun {
		fmt.Fprintln(out, "Dry run: no files were written")
	}
	return err
}

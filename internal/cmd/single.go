package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masahif/docskills/internal/crawler"
	"github.com/masahif/docskills/internal/fetch"
	"github.com/masahif/docskills/internal/skill"
	"github.com/masahif/docskills/internal/transcode"
)

var singleCmd = &cobra.Command{
	Use:   "single <URL>",
	Short: "Write a skill for one page without following links",
	Args:  cobra.ExactArgs(1),
	RunE:  runSingle,
}

func init() {
	singleCmd.Flags().Bool("stdout", false, "print the skill instead of writing it")
	rootCmd.AddCommand(singleCmd)
}

func runSingle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	toStdout, _ := cmd.Flags().GetBool("stdout")

	root, err := cfg.OutputDir()
	if err != nil {
		return err
	}

	client := fetch.NewClient(cfg.Agent(), cfg.RequestTimeout())
	defer client.Close()

	var sink skill.Sink = skill.NewFileSink(root)
	if toStdout {
		sink = skill.NewWriterSink(cmd.OutOrStdout())
	}

	c, err := crawler.NewCrawler(cfg, crawler.Deps{
		Fetcher:      fetch.NewHTTPFetcher(client),
		Materializer: skill.NewMaterializer(root, cfg.Flat, sink),
		Transcoder:   transcode.NewConverter(),
	}, crawler.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialize crawler: %w", err)
	}

	artifact, err := c.Single(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !toStdout {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", artifact.Path, artifact.Name)
	}
	return nil
}

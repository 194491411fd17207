package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/masahif/docskills/internal/skill"
	"github.com/masahif/docskills/internal/storage"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated skills from the output directory",
	Long: `Clean removes skill directories holding a SKILL.md and flat skill files
starting with front matter. Other files in the output directory are kept.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolP("force", "f", false, "do not ask for confirmation")
	cleanCmd.Flags().StringP("pattern", "p", "", "only remove skills whose name matches this glob")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	pattern, _ := cmd.Flags().GetString("pattern")

	root, err := cfg.OutputDir()
	if err != nil {
		return err
	}

	skills, err := skill.FindGenerated(root, pattern)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(skills) == 0 {
		fmt.Fprintf(out, "No generated skills found in %s\n", root)
		return nil
	}

	for _, s := range skills {
		fmt.Fprintf(out, "  %s\n", s.Name)
	}
	if !force && !confirm(cmd, fmt.Sprintf("Remove %d skills from %s?", len(skills), root)) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	removed, err := skill.RemoveGenerated(skills)
	if err != nil {
		return err
	}

	// A partial clean keeps the checkpoint of the remaining skills.
	if pattern == "" {
		if path, err := checkpointPath(cfg, root); err == nil {
			if err := storage.Remove(path); err != nil {
				slog.Warn("Failed to remove checkpoint", "path", path, "error", err)
			}
		}
	}

	fmt.Fprintf(out, "Removed %d skills\n", removed)
	return nil
}

// confirm asks a yes/no question on the command's input. Anything but y or
// yes is a no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

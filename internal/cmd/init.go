package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/masahif/docskills/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a configuration file.

On a terminal, init asks for the target tool, the scope, the output
directory and the crawl settings. With --force, or when input is not a
terminal, the commented default template is written as-is.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing file without asking questions")
	initCmd.Flags().StringP("path", "p", config.DefaultFileName, "where to write the configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path, _ := cmd.Flags().GetString("path")
	out := cmd.OutOrStdout()

	data := []byte(config.DefaultConfigYAML)
	in, interactive := terminalInput(cmd.InOrStdin())
	if interactive && !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s (use --force to overwrite)", config.ErrConfigExists, path)
		}
		stdout, ok := out.(*os.File)
		if !ok {
			stdout = os.Stdout
		}
		values, err := askTemplateValues(in, stdout, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if data, err = config.RenderTemplate(values); err != nil {
			return err
		}
	}

	if err := config.WriteFile(path, data, force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}

	fmt.Fprintf(out, "Created %s\n", path)
	if interactive && !force {
		fmt.Fprintln(out, "Run the following command to start crawling:")
		fmt.Fprintln(out, "  docskills crawl <URL>")
	}
	return nil
}

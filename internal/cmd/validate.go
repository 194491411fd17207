package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and report errors",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolP("show", "s", false, "print the resolved configuration as YAML")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Configuration %s is valid\n", used)
	} else {
		fmt.Fprintln(out, "Configuration is valid (no config file, using defaults)")
	}

	root, err := cfg.OutputDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Output directory: %s\n", root)

	filter, err := cfg.Filter()
	if err != nil {
		return err
	}
	if list := filter.Rules(); len(list) > 0 {
		fmt.Fprintf(out, "URL rules (%d):\n", len(list))
		for _, r := range list {
			fmt.Fprintf(out, "  %-6s %s\n", r.Action, r.URL)
		}
		if filter.HasAllow() {
			fmt.Fprintln(out, "Only URLs matching an allow rule are crawled")
		}
	}

	show, _ := cmd.Flags().GetBool("show")
	if !show {
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "# Resolved configuration (flags > SKILLS_* environment > config file > defaults)\n")
	_, err = out.Write(data)
	return err
}

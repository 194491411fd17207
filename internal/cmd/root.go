// Package cmd provides the command-line interface for docskills.
// It handles command parsing, configuration loading and logging setup, and
// runs the crawl, single, validate, clean and init commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/masahif/docskills/internal/config"
	"github.com/masahif/docskills/internal/logging"
	"github.com/masahif/docskills/internal/storage"
)

const envPrefix = "SKILLS"

var (
	cfgFile   string
	outputDir string
	verbose   int
	quiet     bool

	version   string
	buildTime string

	// configErr is a config file that exists but could not be read.
	configErr error
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docskills",
	Short: "Turn documentation sites into agent skills",
	Long: `docskills crawls documentation sites and writes one skill per page:
a SKILL.md with name, description and source URL front matter followed by
the page content as clean Markdown, ready for coding agents to load.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	return err
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./skills.yaml, env SKILLS_CONFIG)")
	pf.StringVarP(&outputDir, "output", "o", "", "output directory, overrides target and output from the config")
	pf.CountVarP(&verbose, "verbose", "v", "verbose logging (-v debug, -vv debug with source locations)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "only log errors")
}

// initConfig reads in .env, the config file and SKILLS_* environment variables.
func initConfig() {
	configErr = nil

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	path := cfgFile
	if path == "" {
		path = viper.GetString("config")
	}
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.DefaultFileName, ".yaml"))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("failed to read config: %w", err)
		}
	}
}

// setDefaults registers every config key so environment variables and
// flags reach viper.Unmarshal.
func setDefaults() {
	d := config.DefaultConfig()
	viper.SetDefault("output", d.Output)
	viper.SetDefault("target", d.Target)
	viper.SetDefault("scope", d.Scope)
	viper.SetDefault("flat", d.Flat)
	viper.SetDefault("user_agent", d.UserAgent)
	viper.SetDefault("delay_ms", d.DelayMS)
	viper.SetDefault("max_depth", d.MaxDepth)
	viper.SetDefault("request_timeout_secs", d.RequestTimeoutSecs)
	viper.SetDefault("respect_robots_txt", d.RespectRobotsTxt)
	viper.SetDefault("subdomains", d.Subdomains)
	viper.SetDefault("concurrency", d.Concurrency)
	viper.SetDefault("rules", d.Rules)
	viper.SetDefault("remove_selectors", d.RemoveSelectors)
	viper.SetDefault("state_file", d.StateFile)
	viper.SetDefault("log_format", d.LogFormat)
	viper.SetDefault("log_file", d.LogFile)
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	lc := logging.DefaultConfig()
	lc.Level = logging.LevelFor(verbose, quiet)
	lc.AddSource = verbose >= 2 && !quiet
	lc.Format = viper.GetString("log_format")
	lc.FilePath = viper.GetString("log_file")
	lc.Console = cmd.ErrOrStderr()

	closer, err := logging.SetDefault(*lc)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logCloser = closer
	return nil
}

// bindFlags binds command flags to config keys. Bindings are made when the
// command runs since viper is global.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig resolves and validates the configuration.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}

	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if outputDir != "" {
		cfg.Target = config.TargetCustom
		cfg.Output = outputDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// checkpointPath is the resume database for an output root.
func checkpointPath(cfg *config.Config, root string) (string, error) {
	if cfg.StateFile != "" {
		return cfg.StateFile, nil
	}
	return storage.DefaultPath(root)
}

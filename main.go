package main

import (
	"fmt"
	"log/slog"
	"os"

	"devflow-context/packages/config"
	"devflow-context/packages/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "devflow-context",
	Short: "Prepare a PHP codebase and its issue tracker for AI agents",
	Long: `devflow-context annotates a Laravel codebase with AGENT_* context headers
and ranks the open GitHub issues of a repository by how ready they are for an
autonomous agent to pick up.

Commands:
  enhance - add AGENT_* headers to PHP files and write the context reports
  issues  - analyze open issues and print the readiness ranking as JSON
  serve   - run the GitHub App that keeps the ready label up to date`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envErr := godotenv.Load()

		path := configPath
		if path == "" {
			path = os.Getenv("DEVFLOW_CONFIG")
		}
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded

		level := resolveLogLevel(cfg, logLevel)
		format := cfg.Debug.LogFormat
		if logFormat != "" {
			format = logFormat
		}
		logging.Setup(os.Stderr, level, format)

		if envErr != nil {
			slog.Debug("No .env file found")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $DEVFLOW_CONFIG or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(enhanceCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(serveCmd)
}

// resolveLogLevel picks the level by precedence: --log-level, LOG_LEVEL,
// debug.enabled, then debug.log_level.
func resolveLogLevel(cfg *config.Config, flagLevel string) string {
	switch {
	case flagLevel != "":
		return flagLevel
	case os.Getenv("LOG_LEVEL") != "":
		return os.Getenv("LOG_LEVEL")
	case cfg.Debug.Enabled:
		return "debug"
	default:
		return cfg.Debug.LogLevel
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

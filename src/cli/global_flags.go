package cli

import (
	"github.com/spf13/cobra"

	"github.com/darcyabjones/acc-to-tax/src/config"
	"github.com/darcyabjones/acc-to-tax/src/safety"
)

// addGlobalFlags adds the persistent flags shared by every subcommand.
func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("db", "d", "", "Database target (e.g. sqlite:/data/db.sqlite)")
	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Int("batch-size", 0, "Rows per INSERT batch during build (default 500)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output and non-error logs")
	cmd.PersistentFlags().BoolP("yes", "y", false, "Assume 'yes' to prompts and run non-interactively")
	cmd.PersistentFlags().Bool("dry-run", false, "Show planned actions without making changes")
}

// resolveConfig loads the layered configuration and applies any flags the
// user actually set on top.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if flags.Changed("db") {
		cfg.DB, _ = flags.GetString("db")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize, _ = flags.GetInt("batch-size")
	}
	return cfg, nil
}

// getSafetyOptions reads the global prompt-gating flags.
func getSafetyOptions(cmd *cobra.Command) safety.Options {
	flags := cmd.Root().PersistentFlags()
	dry, _ := flags.GetBool("dry-run")
	yes, _ := flags.GetBool("yes")
	return safety.Options{DryRun: dry, Yes: yes}
}

func isQuiet(cmd *cobra.Command) bool {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return quiet
}

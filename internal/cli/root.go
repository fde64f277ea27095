package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/randompixle/Flame/internal/branding"
	"github.com/randompixle/Flame/internal/config"
	"github.com/randompixle/Flame/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var logLevelFlag string

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` is an interactive command shell whose commands are small script units
loaded from a built-in directory and an extension directory. Units are shell
(.sh) or Lua (.lua) files exposing a run entry point; pkm installs more of them
from remote sources.

Run without a subcommand to start the shell.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		settings := config.Current()

		level := settings.LogLevel
		if logLevelFlag != "" {
			level = logLevelFlag
		}
		cfg := logging.DefaultConfig()
		cfg.Level = logging.ParseLevel(level)
		cfg.Pretty = settings.LogPretty
		logging.Init(cfg)
	},
	RunE: runShell,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error, off)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// ExitError carries a non-zero status for the process to exit with.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return "exit status " + strconv.Itoa(e.Code)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/syntax"

	"github.com/randompixle/Flame/internal/config"
	"github.com/randompixle/Flame/internal/logging"
)

func init() {
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(runCmd)
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

var runCmd = &cobra.Command{
	Use:   "run -- <command> [args...]",
	Short: "Run one command line and exit",
	Long: `Dispatch a single line exactly as the interactive shell would: core commands,
built-in and installed units, then host programs.

A single argument is taken as a whole line, so "flame run 'ls -la | head'"
passes the quoted text through the shell tokenizer. Several arguments are
quoted individually.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := joinLine(args)
		if err != nil {
			return err
		}
		sh, err := newShell()
		if err != nil {
			return err
		}
		ctx := context.Background()
		sh.Refresh(ctx)
		sh.ExecLine(ctx, line)
		if code := sh.Status(); code != 0 {
			return &ExitError{Code: code}
		}
		return nil
	},
}

func runShell(cmd *cobra.Command, args []string) error {
	sh, err := newShell()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sh.Refresh(ctx)
	if config.Current().WatchExtensions {
		if err := sh.Watch(ctx); err != nil {
			logging.Warn().Err(err).Msg("extension watcher disabled")
			fmt.Fprintf(os.Stderr, "[warn] %v\n", err)
		}
	}
	if err := sh.Run(ctx); err != nil {
		return err
	}
	if code, exited := sh.ExitCode(); exited && code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// joinLine turns run's arguments back into one line.
func joinLine(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("quoting %q: %w", a, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), nil
}

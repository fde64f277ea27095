package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/randompixle/Flame/internal/pkm"
)

var (
	pkmUpdateAll bool
	pkmListJSON  bool
	pkmInfoJSON  bool
)

func init() {
	pkmUpdateCmd.Flags().BoolVar(&pkmUpdateAll, "all", false, "Update every installed package")
	pkmListCmd.Flags().BoolVar(&pkmListJSON, "json", false, "Print the manifest records as JSON")
	pkmInfoCmd.Flags().BoolVar(&pkmInfoJSON, "json", false, "Output in JSON format")

	pkmCmd.AddCommand(pkmInstallCmd, pkmUpdateCmd, pkmRemoveCmd, pkmListCmd, pkmInfoCmd)
	rootCmd.AddCommand(pkmCmd)
}

var pkmCmd = &cobra.Command{
	Use:   "pkm",
	Short: "Install, update and remove command units",
	Long: `Manage units in the extension directory from outside the shell.

Locators may be http(s):// or file:// URLs, absolute paths, gh:owner/repo[@branch]/path,
owner/repo:path, or a bare file name looked up in the default repository.
A locator ending in .zip installs every unit in the archive.

Running shells see the changes after their next 'reload'.`,
}

var pkmInstallCmd = &cobra.Command{
	Use:   "install <locator> [name]",
	Short: "Install a unit or a zip archive of units",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		return pkmResult(m.Install(context.Background(), args[0], name))
	},
}

var pkmUpdateCmd = &cobra.Command{
	Use:   "update <name> | --all",
	Short: "Re-fetch installed units from their recorded source",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pkmUpdateAll == (len(args) == 1) || len(args) > 1 {
			return fmt.Errorf("specify exactly one of <name> or --all")
		}
		m, err := newManager(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if pkmUpdateAll {
			return pkmResult(m.UpdateAll(context.Background()))
		}
		return pkmResult(m.Update(context.Background(), args[0]))
	},
}

var pkmRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an installed unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return pkmResult(m.Remove(args[0]))
	},
}

var pkmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !pkmListJSON {
			return m.List(cmd.OutOrStdout())
		}
		records, err := m.Records()
		if err != nil {
			return err
		}
		return printJSON(cmd, records)
	},
}

var pkmInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show the source, version and dependencies of a package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		info, err := m.Info(args[0])
		if err != nil {
			return pkmResult(err)
		}
		if pkmInfoJSON {
			return printJSON(cmd, info)
		}
		info.Print(cmd.OutOrStdout())
		return nil
	},
}

// pkmResult prints a package manager failure the way the shell does and
// turns it into a non-zero exit.
func pkmResult(err error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintln(os.Stderr, pkm.FormatError(err))
	return &ExitError{Code: 1}
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

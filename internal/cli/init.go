package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randompixle/Flame/internal/userdata"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Flame home directory and seed the built-in commands",
	Long: `Create the built-in and extension directories and copy the default units
into the built-in directory. Existing files are never overwritten, so running
init again restores only what was deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := userdata.DefaultLayout()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initializing %s\n", layout.Root)
		if err := userdata.EnsureLayout(cmd.OutOrStdout(), layout); err != nil {
			return fmt.Errorf("initializing layout: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "\nDone. Run 'flame' to start the shell.")
		return nil
	},
}

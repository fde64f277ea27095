package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randompixle/Flame/internal/shell"
)

var commandsJSON bool

func init() {
	commandsCmd.Flags().BoolVar(&commandsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(commandsCmd)
}

type commandEntry struct {
	Name    string `json:"name"`
	Origin  string `json:"origin"`
	Path    string `json:"path,omitempty"`
	Summary string `json:"summary,omitempty"`
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the commands the shell would load",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sh, err := newShell(shell.WithIO(nil, io.Discard, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		sh.Refresh(context.Background())

		var entries []commandEntry
		for _, u := range sh.Registry().Units() {
			entries = append(entries, commandEntry{
				Name:    u.Name,
				Origin:  u.Origin.String(),
				Path:    u.Path,
				Summary: u.Summary,
			})
		}
		if commandsJSON {
			return printJSON(cmd, entries)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tORIGIN\tSUMMARY")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Origin, e.Summary)
		}
		return w.Flush()
	},
}

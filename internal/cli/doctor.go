package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/shell"

	"github.com/randompixle/Flame/internal/config"
	"github.com/randompixle/Flame/internal/manifest"
	"github.com/randompixle/Flame/internal/pkm"
	"github.com/randompixle/Flame/internal/registry"
	fshell "github.com/randompixle/Flame/internal/shell"
	"github.com/randompixle/Flame/internal/userdata"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Create missing directories and re-seed default units")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the Flame installation",
	Long: `Check the directory layout, the manifest, installed units, unit loading and
declared dependencies.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		layout, err := userdata.DefaultLayout()
		if err != nil {
			return fmt.Errorf("resolving layout: %w", err)
		}

		if err := userdata.CheckLayout(w, layout, doctorFix); err != nil {
			return err
		}
		failed := runManifestCheck(w, layout.ManifestPath)

		sh := fshell.New(layout,
			fshell.WithIO(nil, io.Discard, io.Discard),
			fshell.WithPackageOptions(pkm.WithOutput(io.Discard)),
		)
		loadErrs := sh.Registry().Refresh(context.Background())
		if checkUnits(w, loadErrs) {
			failed = true
		}
		if err := checkInstalled(w, sh.Packages()); err != nil {
			fmt.Fprintf(w, "  [WARN] %v\n", err)
		}
		checkDependencies(w, sh.Registry().Units())

		if failed {
			return &ExitError{Code: 1}
		}
		return nil
	},
}

// runManifestCheck validates the manifest against its schema and reports
// whether it failed.
func runManifestCheck(w io.Writer, path string) bool {
	fmt.Fprintf(w, "Manifest validation: %s\n", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(w, "  [ OK ] No manifest yet")
		return false
	}
	result, err := manifest.ValidateFile(afero.NewOsFs(), path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return true
	}
	if result.Valid {
		fmt.Fprintln(w, "  [ OK ] Valid manifest")
		return false
	}

	fmt.Fprintf(w, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		if issue.Path != "" {
			fmt.Fprintf(w, "    - %s: %s\n", issue.Path, issue.Message)
		} else {
			fmt.Fprintf(w, "    - %s\n", issue.Message)
		}
	}
	return true
}

func checkUnits(w io.Writer, errs []*registry.LoadError) bool {
	fmt.Fprintln(w, "Unit loading:")
	if len(errs) == 0 {
		fmt.Fprintln(w, "  [ OK ] All units loaded")
		return false
	}
	for _, e := range errs {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", e.Path, e.Err)
	}
	return true
}

func checkInstalled(w io.Writer, m *pkm.Manager) error {
	records, err := m.Records()
	if err != nil {
		return err
	}
	files, err := m.InstalledFiles()
	if err != nil {
		return err
	}
	recorded := make([]string, 0, len(records))
	for name := range records {
		recorded = append(recorded, name)
	}
	present := make([]string, 0, len(files))
	for name := range files {
		present = append(present, name)
	}
	userdata.CheckInstalled(w, recorded, present)
	return nil
}

// checkDependencies reports declared dependencies missing from PATH and
// whether an installer is configured to fetch them.
func checkDependencies(w io.Writer, units []*registry.Unit) {
	fmt.Fprintln(w, "Dependencies:")

	installer := &pkm.CommandInstaller{Command: config.Current().DependencyInstaller}
	missing := map[string][]string{}
	for _, u := range units {
		if u.Path == "" {
			continue
		}
		src, err := os.ReadFile(u.Path)
		if err != nil {
			continue
		}
		for _, dep := range installer.Missing(pkm.ParseRequirements(string(src))) {
			missing[dep] = append(missing[dep], u.Name)
		}
	}

	if len(missing) == 0 {
		fmt.Fprintln(w, "  [ OK ] All declared dependencies found on PATH")
	} else {
		deps := make([]string, 0, len(missing))
		for dep := range missing {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		for _, dep := range deps {
			fmt.Fprintf(w, "  [MISS] %s (required by %v)\n", dep, missing[dep])
		}
	}

	if installer.Command == "" {
		fmt.Fprintln(w, "  [INFO] No dependency_installer configured")
		return
	}
	argv, err := shell.Fields(installer.Command, nil)
	if err != nil || len(argv) == 0 {
		fmt.Fprintf(w, "  [FAIL] dependency_installer %q cannot be parsed\n", installer.Command)
		return
	}
	if path, err := exec.LookPath(argv[0]); err != nil {
		fmt.Fprintf(w, "  [MISS] dependency_installer %s not found\n", argv[0])
	} else {
		fmt.Fprintf(w, "  [ OK ] dependency_installer %s found at %s\n", argv[0], path)
	}
}

package userdata

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// CheckLayout validates the directory structure. When fix is true, missing
// directories are created and default units re-seeded.
func CheckLayout(w io.Writer, l Layout, fix bool) error {
	fmt.Fprintln(w, "Layout check:")

	if _, err := os.Stat(l.Root); os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", l.Root)
		if !fix {
			fmt.Fprintln(w, "         Run 'flame doctor --fix' to create")
			return nil
		}
		fmt.Fprintln(w, "  [FIX ] Creating layout...")
		if err := EnsureLayout(w, l); err != nil {
			return fmt.Errorf("auto-fix layout: %w", err)
		}
		return nil
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", l.Root)

	checkDirExists(w, l.BuiltinDir, fix)
	checkDirExists(w, l.ExtensionDir, fix)
	checkFileExists(w, l.ManifestPath)

	if fix {
		if err := EnsureLayout(w, l); err != nil {
			return fmt.Errorf("re-seeding default units: %w", err)
		}
	}
	return nil
}

// CheckInstalled cross-references manifest records with the unit files found
// in the extension directory. Both sides are tolerated by the shell; doctor
// only reports them.
func CheckInstalled(w io.Writer, records, files []string) {
	fmt.Fprintln(w, "Installed units:")

	recorded := make(map[string]bool, len(records))
	for _, r := range records {
		recorded[r] = true
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}

	var orphans, untracked []string
	for r := range recorded {
		if !present[r] {
			orphans = append(orphans, r)
		}
	}
	for f := range present {
		if !recorded[f] {
			untracked = append(untracked, f)
		}
	}
	sort.Strings(orphans)
	sort.Strings(untracked)

	if len(orphans) == 0 && len(untracked) == 0 {
		fmt.Fprintf(w, "  [ OK ] %d installed, all recorded\n", len(files))
		return
	}
	for _, name := range orphans {
		fmt.Fprintf(w, "  [WARN] %s has a manifest record but no unit file\n", name)
	}
	for _, name := range untracked {
		fmt.Fprintf(w, "  [WARN] %s has no manifest record (cannot be updated)\n", name)
	}
}

func checkFileExists(w io.Writer, path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist (created on first install)\n", path)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", path)
}

func checkDirExists(w io.Writer, path string, fix bool) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		if fix {
			if mkErr := os.MkdirAll(path, DirPermNormal); mkErr != nil {
				fmt.Fprintf(w, "  [FAIL] Could not create %s: %v\n", path, mkErr)
				return
			}
			fmt.Fprintf(w, "  [FIX ] Created %s\n", path)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "  [WARN] %s exists but is not a directory\n", path)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", path)
}

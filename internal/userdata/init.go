package userdata

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/randompixle/Flame/internal/platform"
)

//go:embed units
var defaultUnits embed.FS

// DefaultUnitNames returns the file names of the units seeded into the
// built-in directory.
func DefaultUnitNames() []string {
	entries, err := fs.ReadDir(defaultUnits, "units")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// EnsureLayout creates the layout directories and seeds any missing default
// unit into the built-in directory. Existing files are never overwritten, so
// a user may edit or delete a seeded unit. Progress lines go to w when it is
// non-nil.
func EnsureLayout(w io.Writer, l Layout) error {
	if w == nil {
		w = io.Discard
	}
	for _, dir := range []string{l.Root, l.BuiltinDir, l.ExtensionDir} {
		if err := ensureDir(w, dir); err != nil {
			return err
		}
	}
	for _, name := range DefaultUnitNames() {
		data, err := defaultUnits.ReadFile("units/" + name)
		if err != nil {
			return fmt.Errorf("reading embedded unit %s: %w", name, err)
		}
		if err := ensureFile(w, filepath.Join(l.BuiltinDir, name), data); err != nil {
			return err
		}
	}
	return nil
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, DirPermNormal); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	// MkdirAll may not apply exact perms if parent dirs needed creation.
	if err := platform.Chmod(path, DirPermNormal); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}

// ensureFile creates a file with content if it doesn't exist.
func ensureFile(w io.Writer, path string, content []byte) error {
	if _, err := os.Lstat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, content, FilePermNormal); err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Seeded %s\n", path)
	return nil
}

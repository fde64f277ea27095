package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/randompixle/Flame/internal/branding"
)

// Directory and file name constants for the on-disk layout.
const (
	CommandsDir  = "Commands"
	InstalledDir = "Installed"
	ManifestFile = "manifest.json"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// Layout holds the resolved locations the shell and its units work with.
type Layout struct {
	// Root is the Flame home directory.
	Root string
	// BuiltinDir holds units shipped with the shell.
	BuiltinDir string
	// ExtensionDir holds units installed by the package manager.
	ExtensionDir string
	// ManifestPath is the JSON provenance record for installed units.
	ManifestPath string
}

// NewLayout derives the standard layout beneath root.
func NewLayout(root string) Layout {
	installed := filepath.Join(root, InstalledDir)
	return Layout{
		Root:         root,
		BuiltinDir:   filepath.Join(root, CommandsDir),
		ExtensionDir: installed,
		ManifestPath: filepath.Join(installed, ManifestFile),
	}
}

// GetRoot returns the Flame home directory.
// It checks the FLAME_HOME environment variable first,
// then falls back to ~/.flame.
func GetRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// DefaultLayout resolves the layout from the environment. FLAME_COMMANDS and
// FLAME_INSTALLED relocate the two unit directories independently; the
// manifest always lives inside the extension directory.
func DefaultLayout() (Layout, error) {
	root, err := GetRoot()
	if err != nil {
		return Layout{}, err
	}
	l := NewLayout(root)
	if v := os.Getenv(branding.EnvVar("COMMANDS")); v != "" {
		l.BuiltinDir = v
	}
	if v := os.Getenv(branding.EnvVar("INSTALLED")); v != "" {
		l.ExtensionDir = v
		l.ManifestPath = filepath.Join(v, ManifestFile)
	}
	return l, nil
}

// Environ returns the layout as FLAME_* variables for unit interpreters.
func (l Layout) Environ() []string {
	return []string{
		branding.EnvVar("ROOT") + "=" + l.Root,
		branding.EnvVar("COMMANDS_DIR") + "=" + l.BuiltinDir,
		branding.EnvVar("INSTALLED_DIR") + "=" + l.ExtensionDir,
		branding.EnvVar("MANIFEST") + "=" + l.ManifestPath,
	}
}

package userdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetRoot_EnvOverride(t *testing.T) {
	t.Setenv("FLAME_HOME", "/tmp/test-flame")
	root, err := GetRoot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root != "/tmp/test-flame" {
		t.Errorf("expected /tmp/test-flame, got %s", root)
	}
}

func TestGetRoot_Default(t *testing.T) {
	t.Setenv("FLAME_HOME", "")
	root, err := GetRoot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".flame")
	if root != expected {
		t.Errorf("expected %s, got %s", expected, root)
	}
}

func TestNewLayout(t *testing.T) {
	l := NewLayout("/srv/flame")
	if l.BuiltinDir != "/srv/flame/Commands" {
		t.Errorf("BuiltinDir = %s", l.BuiltinDir)
	}
	if l.ExtensionDir != "/srv/flame/Installed" {
		t.Errorf("ExtensionDir = %s", l.ExtensionDir)
	}
	if l.ManifestPath != "/srv/flame/Installed/manifest.json" {
		t.Errorf("ManifestPath = %s", l.ManifestPath)
	}
}

func TestDefaultLayout_InstalledOverride(t *testing.T) {
	t.Setenv("FLAME_HOME", "/tmp/fh")
	t.Setenv("FLAME_COMMANDS", "")
	t.Setenv("FLAME_INSTALLED", "/tmp/ext")
	l, err := DefaultLayout()
	if err != nil {
		t.Fatalf("DefaultLayout() error = %v", err)
	}
	if l.BuiltinDir != "/tmp/fh/Commands" {
		t.Errorf("BuiltinDir = %s", l.BuiltinDir)
	}
	if l.ManifestPath != "/tmp/ext/manifest.json" {
		t.Errorf("ManifestPath = %s", l.ManifestPath)
	}
}

func TestLayoutEnviron(t *testing.T) {
	env := NewLayout("/r").Environ()
	joined := strings.Join(env, "\n")
	for _, want := range []string{
		"FLAME_ROOT=/r",
		"FLAME_COMMANDS_DIR=/r/Commands",
		"FLAME_INSTALLED_DIR=/r/Installed",
		"FLAME_MANIFEST=/r/Installed/manifest.json",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("Environ() missing %q in %v", want, env)
		}
	}
}

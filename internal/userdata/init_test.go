package userdata

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureLayout_SeedsDefaults(t *testing.T) {
	l := NewLayout(filepath.Join(t.TempDir(), "flame"))

	var buf bytes.Buffer
	if err := EnsureLayout(&buf, l); err != nil {
		t.Fatalf("EnsureLayout() error = %v", err)
	}

	for _, dir := range []string{l.Root, l.BuiltinDir, l.ExtensionDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
	names := DefaultUnitNames()
	if len(names) == 0 {
		t.Fatal("no embedded default units")
	}
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(l.BuiltinDir, name)); err != nil {
			t.Errorf("default unit %s not seeded: %v", name, err)
		}
	}
	if !strings.Contains(buf.String(), "Seeded") {
		t.Errorf("expected seed progress, got:\n%s", buf.String())
	}
}

func TestEnsureLayout_KeepsUserEdits(t *testing.T) {
	l := NewLayout(t.TempDir())
	if err := os.MkdirAll(l.BuiltinDir, 0755); err != nil {
		t.Fatal(err)
	}
	custom := []byte("run() { echo mine; }\n")
	if err := os.WriteFile(filepath.Join(l.BuiltinDir, "ls.sh"), custom, 0644); err != nil {
		t.Fatal(err)
	}

	if err := EnsureLayout(nil, l); err != nil {
		t.Fatalf("EnsureLayout() error = %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(l.BuiltinDir, "ls.sh"))
	if !bytes.Equal(got, custom) {
		t.Errorf("ls.sh was overwritten: %q", got)
	}
}

func TestEnsureLayout_RootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "flame")
	if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureLayout(nil, NewLayout(root)); err == nil {
		t.Fatal("expected error when root is a regular file")
	}
}

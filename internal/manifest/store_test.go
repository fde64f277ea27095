package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

const manifestPath = "/flame/Installed/manifest.json"

func memStore() *Store {
	return &Store{Fs: afero.NewMemMapFs(), Path: manifestPath}
}

func compact(t *testing.T, data []byte) string {
	t.Helper()
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		t.Fatalf("compact: %v", err)
	}
	return buf.String()
}

func TestLoad_MissingCreatesEmpty(t *testing.T) {
	s := memStore()
	m, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(m.Commands) != 0 {
		t.Errorf("Commands = %v, want empty", m.Commands)
	}
	data, err := afero.ReadFile(s.Fs, manifestPath)
	if err != nil {
		t.Fatalf("manifest not created: %v", err)
	}
	if got := compact(t, data); got != `{"commands":{}}` {
		t.Errorf("created manifest = %s", got)
	}
}

func TestLoad_MalformedResets(t *testing.T) {
	tests := map[string]string{
		"truncated":     `{"commands": {"foo": `,
		"not json":      `hello`,
		"wrong type":    `{"commands": ["foo"]}`,
		"empty file":    ``,
		"missing key":   `{}`,
		"null commands": `{"commands": null}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			s := memStore()
			if err := afero.WriteFile(s.Fs, manifestPath, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			m, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if m.Commands == nil || len(m.Commands) != 0 {
				t.Errorf("Commands = %v, want empty map", m.Commands)
			}
		})
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := memStore()
	m := New()
	m.Put("foo", Record{Source: "https://example/foo.sh", Type: TypeSingle})
	m.Put("bar", Record{Source: "https://example/pack.zip", Type: TypeZip, Member: "tools/bar.lua", Version: "1.2.0"})
	if err := s.Save(m); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Commands) != 2 {
		t.Fatalf("Commands = %v", loaded.Commands)
	}
	for name, want := range m.Commands {
		if got := loaded.Commands[name]; got != want {
			t.Errorf("%s = %+v, want %+v", name, got, want)
		}
	}

	first, _ := afero.ReadFile(s.Fs, manifestPath)
	if err := s.Save(loaded); err != nil {
		t.Fatal(err)
	}
	second, _ := afero.ReadFile(s.Fs, manifestPath)
	if !bytes.Equal(first, second) {
		t.Errorf("save(load()) changed the document:\n%s\n---\n%s", first, second)
	}
}

func TestSave_SingleRecordShape(t *testing.T) {
	s := memStore()
	m := New()
	m.Put("foo", Record{Source: "https://example/foo.sh", Type: TypeSingle})
	if err := s.Save(m); err != nil {
		t.Fatal(err)
	}
	data, _ := afero.ReadFile(s.Fs, manifestPath)
	want := `{"commands":{"foo":{"source":"https://example/foo.sh","type":"single"}}}`
	if got := compact(t, data); got != want {
		t.Errorf("manifest = %s, want %s", got, want)
	}
	if exists, _ := afero.Exists(s.Fs, manifestPath+".tmp"); exists {
		t.Error("temp file left behind")
	}
}

func TestSave_ReadOnlyFs(t *testing.T) {
	s := &Store{Fs: afero.NewReadOnlyFs(afero.NewMemMapFs()), Path: manifestPath}
	err := s.Save(New())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("Save() error = %v, want PersistenceError", err)
	}
	if perr.Op != "write" {
		t.Errorf("Op = %q", perr.Op)
	}
}

func TestNewStore_OsFs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Installed", "manifest.json")
	s := NewStore(path)
	m := New()
	m.Put("x", Record{Source: "file:///tmp/x.sh", Type: TypeSingle})
	if err := s.Save(m); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("manifest not on disk: %v", err)
	}
}

func TestManifestHelpers(t *testing.T) {
	m := New()
	m.Put("b", Record{Source: "s", Type: TypeSingle})
	m.Put("a", Record{Source: "s", Type: TypeSingle})
	if got := m.Names(); len(got) != 2 || got[0] != "a" {
		t.Errorf("Names() = %v", got)
	}
	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Error("a still present after Delete")
	}

	var zero Manifest
	zero.Put("c", Record{Source: "s", Type: TypeSingle})
	if _, ok := zero.Get("c"); !ok {
		t.Error("Put on zero Manifest lost the record")
	}
}

func TestRecordCheck(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"single", Record{Source: "u", Type: TypeSingle}, false},
		{"zip", Record{Source: "u", Type: TypeZip, Member: "a/b.sh"}, false},
		{"zip without member", Record{Source: "u", Type: TypeZip}, true},
		{"no source", Record{Type: TypeSingle}, true},
		{"no type", Record{Source: "u"}, true},
		{"unknown type", Record{Source: "u", Type: "tarball"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Check()
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

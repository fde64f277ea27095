//go:build integration

package integration_test

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randompixle/Flame/internal/userdata"
)

// testEnv holds an isolated Flame home and a file server for remote units.
type testEnv struct {
	Root   string // FLAME_HOME
	Layout userdata.Layout
	Server *httptest.Server
	files  map[string][]byte
}

// setupTestEnv creates an isolated home, seeds the default units, and starts
// a server that serves whatever the test puts in files.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{Root: t.TempDir(), files: map[string][]byte{}}
	t.Setenv("FLAME_HOME", env.Root)
	t.Setenv("FLAME_COMMANDS", "")
	t.Setenv("FLAME_INSTALLED", "")

	layout, err := userdata.DefaultLayout()
	if err != nil {
		t.Fatalf("DefaultLayout: %v", err)
	}
	env.Layout = layout
	var seedLog bytes.Buffer
	if err := userdata.EnsureLayout(&seedLog, layout); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	env.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := env.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(env.Server.Close)
	return env
}

// serve publishes body at path on the test server and returns its URL.
func (e *testEnv) serve(path string, body []byte) string {
	e.files[path] = body
	return e.Server.URL + path
}

func buildZip(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		w.Write([]byte(body))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file %s to exist: %v", path, err)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s not to exist", path)
	}
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func installedPath(e *testEnv, file string) string {
	return filepath.Join(e.Layout.ExtensionDir, file)
}

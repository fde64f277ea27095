package shell

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name string
		file string
		op   fsnotify.Op
		want bool
	}{
		{"create shell unit", "greet.sh", fsnotify.Create, true},
		{"write lua unit", "greet.lua", fsnotify.Write, true},
		{"remove unit", "greet.sh", fsnotify.Remove, true},
		{"rename unit", "greet.lua", fsnotify.Rename, true},
		{"temp file write", ".greet.sh.tmp", fsnotify.Write, false},
		{"hidden unit", "_draft.sh", fsnotify.Create, false},
		{"manifest write", "manifest.json", fsnotify.Write, false},
		{"chmod only", "greet.sh", fsnotify.Chmod, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, "")
			s.sh.handleEvent(fsnotify.Event{Name: filepath.Join(s.layout.ExtensionDir, tt.file), Op: tt.op})

			reason, got := s.sh.takeReload()
			if got != tt.want {
				t.Fatalf("reload pending = %v, want %v", got, tt.want)
			}
			if got && reason != WatchReason {
				t.Errorf("reason = %q, want %q", reason, WatchReason)
			}
		})
	}
}

package shell

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestPlainReader(t *testing.T) {
	var prompts bytes.Buffer
	r := NewPlainReader(strings.NewReader("one\r\ntwo\nthree"), &prompts)

	for _, want := range []string{"one", "two", "three"} {
		got, err := r.ReadLine("> ")
		if err != nil || got != want {
			t.Fatalf("ReadLine() = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := r.ReadLine("> "); !errors.Is(err, io.EOF) {
		t.Errorf("ReadLine() at end error = %v, want io.EOF", err)
	}
	if prompts.String() != "> > > > " {
		t.Errorf("prompts = %q", prompts.String())
	}
}

func TestInterruptReader(t *testing.T) {
	ir := &interruptReader{r: strings.NewReader("ab\x03cd")}
	buf := make([]byte, 16)

	n, _ := ir.Read(buf)
	if got := string(buf[:n]); got != "ab\x05" {
		t.Errorf("first read = %q", got)
	}
	if !ir.interrupted {
		t.Error("interrupt not recorded")
	}
	n, _ = ir.Read(buf)
	if got := string(buf[:n]); got != "\x15\r" {
		t.Errorf("second read = %q", got)
	}
}

func TestHistory(t *testing.T) {
	h := &history{max: 2}
	for _, line := range []string{"a", "  ", "b", "b", "c"} {
		h.Add(line)
	}
	if h.Len() != 2 || h.At(0) != "c" || h.At(1) != "b" {
		t.Errorf("history = %v", h.entries)
	}
}

func TestComplete(t *testing.T) {
	names := []string{"cat", "cd", "clear", "help", "pkm"}
	tests := []struct {
		line    string
		pos     int
		want    string
		wantPos int
		ok      bool
	}{
		{line: "he", pos: 2, want: "help ", wantPos: 5, ok: true},
		{line: "cl", pos: 2, want: "clear ", wantPos: 6, ok: true},
		{line: "c", pos: 1, ok: false},
		{line: "ca", pos: 2, want: "cat ", wantPos: 4, ok: true},
		{line: "zz", pos: 2, ok: false},
		{line: "cat fi", pos: 6, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, pos, ok := Complete(tt.line, tt.pos, names)
			if ok != tt.ok || got != tt.want || pos != tt.wantPos {
				t.Errorf("Complete(%q) = %q, %d, %v; want %q, %d, %v", tt.line, got, pos, ok, tt.want, tt.wantPos, tt.ok)
			}
		})
	}

	got, pos, ok := Complete("p", 1, []string{"pkm", "ping", "pink"})
	if !ok || got != "pi" || pos != 2 {
		t.Errorf("common prefix = %q, %d, %v", got, pos, ok)
	}
}

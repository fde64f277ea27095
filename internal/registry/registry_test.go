package registry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randompixle/Flame/internal/runtime"
)

func writeUnit(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
}

func echoUnit(msg string) string {
	return "# " + msg + "\nrun() { echo " + msg + "; }\n"
}

type fixture struct {
	builtin, installed string
	reg                *Registry
}

func newFixture(t *testing.T, core ...CoreCommand) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		builtin:   filepath.Join(root, "Commands"),
		installed: filepath.Join(root, "Installed"),
	}
	f.reg = New(runtime.Default(), &runtime.Env{}, core,
		Source{Name: "builtin", Dir: f.builtin, Origin: runtime.OriginBuiltin},
		Source{Name: "installed", Dir: f.installed, Origin: runtime.OriginInstalled, AllowOverride: true},
	)
	return f
}

func invoke(t *testing.T, u *Unit) string {
	t.Helper()
	var out bytes.Buffer
	if err := u.Entry(context.Background(), &runtime.Env{Stdout: &out}, nil); err != nil {
		t.Fatalf("%s: entry() error = %v", u.Name, err)
	}
	return out.String()
}

func TestRefresh_InstalledOverridesBuiltin(t *testing.T) {
	f := newFixture(t)
	writeUnit(t, f.builtin, "ls.sh", echoUnit("builtin-ls"))
	writeUnit(t, f.builtin, "cat.sh", echoUnit("builtin-cat"))
	writeUnit(t, f.installed, "ls.sh", echoUnit("installed-ls"))
	writeUnit(t, f.installed, "weather.lua", "function run(args) print('sunny') end\n")

	if errs := f.reg.Refresh(context.Background()); len(errs) != 0 {
		t.Fatalf("Refresh() errors = %v", errs)
	}

	ls, ok := f.reg.Lookup("ls")
	if !ok {
		t.Fatal("ls not registered")
	}
	if ls.Origin != runtime.OriginInstalled || invoke(t, ls) != "installed-ls\n" {
		t.Errorf("ls resolved to %s unit", ls.Origin)
	}
	if cat, _ := f.reg.Lookup("cat"); cat == nil || cat.Origin != runtime.OriginBuiltin {
		t.Error("cat should stay built-in")
	}
	if w, _ := f.reg.Lookup("weather"); w == nil || invoke(t, w) != "sunny\n" {
		t.Error("installed-only weather unit not loaded")
	}

	want := []string{"cat", "ls", "weather"}
	if got := f.reg.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRefresh_FailingOverrideKeepsBuiltin(t *testing.T) {
	f := newFixture(t)
	writeUnit(t, f.builtin, "ls.sh", echoUnit("builtin-ls"))
	writeUnit(t, f.installed, "ls.sh", "echo no entry point\n")

	errs := f.reg.Refresh(context.Background())
	if len(errs) != 1 || errs[0].Name != "ls" {
		t.Fatalf("Refresh() errors = %v, want one for ls", errs)
	}
	if !strings.Contains(errs[0].Error(), "failed to load ls") {
		t.Errorf("LoadError text = %q", errs[0].Error())
	}
	ls, _ := f.reg.Lookup("ls")
	if ls == nil || ls.Origin != runtime.OriginBuiltin {
		t.Error("built-in ls should remain after a failed override")
	}
}

func TestRefresh_CoreCannotBeShadowed(t *testing.T) {
	called := false
	core := CoreCommand{Name: "pkm", Entry: func(context.Context, *runtime.Env, []string) error {
		called = true
		return nil
	}}
	f := newFixture(t, core)
	writeUnit(t, f.installed, "pkm.sh", echoUnit("fake-pkm"))

	errs := f.reg.Refresh(context.Background())
	if len(errs) != 1 {
		t.Fatalf("Refresh() errors = %v, want shadowing reported", errs)
	}
	u, _ := f.reg.Lookup("pkm")
	if u.Origin != runtime.OriginCore {
		t.Fatalf("pkm origin = %s", u.Origin)
	}
	invoke(t, u)
	if !called {
		t.Error("core pkm not invoked")
	}
	if !f.reg.IsReserved("pkm") {
		t.Error("core command must be reserved")
	}
}

func TestRefresh_DuplicateWithinSource(t *testing.T) {
	f := newFixture(t)
	writeUnit(t, f.builtin, "ls.sh", echoUnit("from-sh"))
	writeUnit(t, f.builtin, "ls.lua", "function run(args) print('from-lua') end\n")

	errs := f.reg.Refresh(context.Background())
	if len(errs) != 1 || !strings.Contains(errs[0].Err.Error(), "duplicate of ls.lua") {
		t.Fatalf("Refresh() errors = %v", errs)
	}
	ls, _ := f.reg.Lookup("ls")
	if got := invoke(t, ls); got != "from-lua\n" {
		t.Errorf("ls output = %q, want the alphabetically first file", got)
	}
}

func TestRefresh_IgnoresNonUnits(t *testing.T) {
	f := newFixture(t)
	writeUnit(t, f.builtin, "_helper.sh", echoUnit("x"))
	writeUnit(t, f.builtin, "notes.txt", "hello")
	writeUnit(t, f.installed, "manifest.json", `{"commands":{}}`)
	if err := os.MkdirAll(filepath.Join(f.builtin, "sub.sh"), 0755); err != nil {
		t.Fatal(err)
	}

	if errs := f.reg.Refresh(context.Background()); len(errs) != 0 {
		t.Fatalf("Refresh() errors = %v", errs)
	}
	if names := f.reg.Names(); len(names) != 0 {
		t.Errorf("Names() = %v, want none", names)
	}
}

func TestRefresh_MissingDirectories(t *testing.T) {
	f := newFixture(t)
	if errs := f.reg.Refresh(context.Background()); len(errs) != 0 {
		t.Fatalf("Refresh() errors = %v", errs)
	}
}

func TestRefresh_ReplacesWholesale(t *testing.T) {
	f := newFixture(t)
	writeUnit(t, f.installed, "gone.sh", echoUnit("gone"))
	f.reg.Refresh(context.Background())
	if _, ok := f.reg.Lookup("gone"); !ok {
		t.Fatal("gone not loaded")
	}

	if err := os.Remove(filepath.Join(f.installed, "gone.sh")); err != nil {
		t.Fatal(err)
	}
	f.reg.Refresh(context.Background())
	if _, ok := f.reg.Lookup("gone"); ok {
		t.Error("removed unit still registered after refresh")
	}
}

func TestIsReserved(t *testing.T) {
	f := newFixture(t)
	writeUnit(t, f.builtin, "ls.sh", echoUnit("ls"))
	writeUnit(t, f.installed, "foo.sh", echoUnit("foo"))
	f.reg.Refresh(context.Background())

	if !f.reg.IsReserved("ls") {
		t.Error("built-in ls should be reserved")
	}
	if f.reg.IsReserved("foo") {
		t.Error("installed foo should not be reserved")
	}
	if f.reg.IsReserved("nothing") {
		t.Error("unknown name should not be reserved")
	}
}

func TestIsReserved_BrokenBuiltinStaysReserved(t *testing.T) {
	f := newFixture(t)
	writeUnit(t, f.builtin, "cat.sh", "echo no entry point\n")
	writeUnit(t, f.builtin, "_hidden.sh", echoUnit("hidden"))
	if errs := f.reg.Refresh(context.Background()); len(errs) != 1 {
		t.Fatalf("Refresh() errors = %v, want 1", errs)
	}
	if _, ok := f.reg.Lookup("cat"); ok {
		t.Fatal("broken cat should not be registered")
	}
	if !f.reg.IsReserved("cat") {
		t.Error("cat has a built-in file and should stay reserved")
	}
	if f.reg.IsReserved("_hidden") {
		t.Error("files that never load should not reserve a name")
	}
	if f.reg.IsReserved("../Commands/cat") {
		t.Error("path names should not be reserved")
	}
}

func TestUnits_Summary(t *testing.T) {
	f := newFixture(t)
	writeUnit(t, f.builtin, "ls.sh", "#!/bin/bash\n#require: ls\n# List things.\nrun() { :; }\n")
	f.reg.Refresh(context.Background())

	units := f.reg.Units()
	if len(units) != 1 || units[0].Summary != "List things." {
		t.Errorf("Units() = %+v", units)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"# Show files.\nrun() { :; }", "Show files."},
		{"-- Lua summary\nfunction run() end", "Lua summary"},
		{"--#require: curl\n-- Fetch\n", "Fetch"},
		{"#version: 1.2.0\n\n# Versioned\n", "Versioned"},
		{"run() { :; }\n# late comment", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Summary([]byte(tt.src)); got != tt.want {
			t.Errorf("Summary(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

package runtime

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestLuaValidate(t *testing.T) {
	rt := &LuaRuntime{}
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"function", "function run(args)\n  print('ok')\nend\n", ""},
		{"assignment", "run = function(args) end\n", ""},
		{"local only", "local function run(args) end\n", ErrMissingRun},
		{"after other blocks", "local n = 0\nfor i = 1, 3 do\n  if i > 1 then n = n + i end\nend\nfunction run(args) print(n) end\n", ""},
		{"nested in function", "function setup()\n  function run(args) end\nend\n", ErrMissingRun},
		{"unindented nested", "if false then\nfunction run(args) end\nend\n", ErrMissingRun},
		{"block comment", "--[[\nfunction run(args) end\n]]\n", ErrMissingRun},
		{"long string", "local doc = [==[\nfunction run(args) end\n]==]\n", ErrMissingRun},
		{"line comment", "-- function run(args) end\n", ErrMissingRun},
		{"table field", "local t = {\n  run = function(args) end,\n}\n", ErrMissingRun},
		{"method", "local M = {}\nfunction M.run(args) end\n", ErrMissingRun},
		{"missing", "print('hello')\n", ErrMissingRun},
		{"syntax", "function run(args)\n  if then\nend\n", "parse error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rt.Validate("unit.lua", []byte(tt.src))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if !strings.Contains(verr.Reason, tt.wantErr) {
				t.Errorf("Reason = %q, want %q", verr.Reason, tt.wantErr)
			}
		})
	}
}

func TestLuaValidate_AgreesWithLoad(t *testing.T) {
	rt := &LuaRuntime{}
	for _, src := range []string{
		"function setup()\n  function run(args) end\nend\n",
		"--[[\nfunction run(args) end\n]]\n",
		"run = function(args) end\n",
		"do\n  local x = 1\nend\nfunction run(args) end\n",
	} {
		verr := rt.Validate("unit.lua", []byte(src))
		_, lerr := rt.Load(context.Background(), "/x/unit.lua", []byte(src), nil)
		if (verr == nil) != (lerr == nil) {
			t.Errorf("src %q: Validate() = %v but Load() = %v", src, verr, lerr)
		}
	}
}

func TestLuaLoad_ArgsAndPrint(t *testing.T) {
	var out bytes.Buffer
	env := testEnv(&out, nil)
	src := "prefix = 'got'\nfunction run(args)\n  print(prefix, #args, args[1], true, nil)\nend\n"

	entry, err := (&LuaRuntime{}).Load(context.Background(), "/x/echo.lua", []byte(src), env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := entry(context.Background(), env, []string{"one", "two"}); err != nil {
		t.Fatalf("entry() error = %v", err)
	}
	if got := out.String(); got != "got\t2\tone\ttrue\tnil\n" {
		t.Errorf("output = %q", got)
	}
}

func TestLuaLoad_RunNotFunction(t *testing.T) {
	_, err := (&LuaRuntime{}).Load(context.Background(), "/x/bad.lua", []byte("run = 5\n"), nil)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ErrMissingRun {
		t.Fatalf("Load() error = %v, want missing run()", err)
	}
}

func TestLuaInvoke_ContextTable(t *testing.T) {
	var out bytes.Buffer
	reloader := &recordingReloader{}
	env := testEnv(&out, reloader)
	src := `function run(args)
  for _, name in ipairs(flame.commands()) do print(name) end
  print(flame.manifest_path)
  flame.request_reload("lua asked")
end
`
	entry, err := (&LuaRuntime{}).Load(context.Background(), "/x/ctx.lua", []byte(src), env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := entry(context.Background(), env, nil); err != nil {
		t.Fatalf("entry() error = %v", err)
	}
	want := "cat\nhelp\nls\n/flame/Installed/manifest.json\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if len(reloader.reasons) != 1 || reloader.reasons[0] != "lua asked" {
		t.Errorf("reload reasons = %v", reloader.reasons)
	}
}

func TestLuaInvoke_ExitAndError(t *testing.T) {
	var out bytes.Buffer
	env := testEnv(&out, nil)
	rt := &LuaRuntime{}

	quit, err := rt.Load(context.Background(), "/x/quit.lua", []byte("function run(args) flame.exit(7) end\n"), env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	code, ok := IsExit(quit(context.Background(), env, nil))
	if !ok || code != 7 {
		t.Errorf("exit = %d, %v; want 7, true", code, ok)
	}

	boom, err := rt.Load(context.Background(), "/x/boom.lua", []byte("function run(args) error('kaboom') end\n"), env)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	err = boom(context.Background(), env, nil)
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("entry() error = %v, want kaboom", err)
	}
	if _, ok := IsExit(err); ok {
		t.Error("a Lua error must not be an exit request")
	}

	// The state stays usable after an error.
	if code, ok := IsExit(quit(context.Background(), env, nil)); !ok || code != 7 {
		t.Errorf("second exit = %d, %v", code, ok)
	}
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

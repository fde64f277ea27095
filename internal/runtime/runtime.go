package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/randompixle/Flame/internal/userdata"
)

// Origin records where a unit came from.
type Origin int

const (
	// OriginCore units are compiled into the binary and cannot be shadowed.
	OriginCore Origin = iota
	// OriginBuiltin units live in the built-in directory.
	OriginBuiltin
	// OriginInstalled units live in the extension directory.
	OriginInstalled
)

func (o Origin) String() string {
	switch o {
	case OriginCore:
		return "core"
	case OriginBuiltin:
		return "builtin"
	case OriginInstalled:
		return "installed"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// Entrypoint is the single capability a unit exposes.
type Entrypoint func(ctx context.Context, env *Env, args []string) error

// Reloader accepts reload requests. The dispatch loop implements it.
type Reloader interface {
	RequestReload(reason string)
}

// Env is the context handed to a unit on every invocation.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Layout userdata.Layout

	// Names lists the currently registered command names, sorted.
	Names func() []string
	// Reloader receives reload requests; nil makes them no-ops.
	Reloader Reloader
}

// Commands returns the sorted names of the registered commands.
func (e *Env) Commands() []string {
	if e == nil || e.Names == nil {
		return nil
	}
	return e.Names()
}

// RequestReload asks the shell to rebuild its registry once the current
// command returns.
func (e *Env) RequestReload(reason string) {
	if e == nil || e.Reloader == nil {
		return
	}
	e.Reloader.RequestReload(reason)
}

func (e *Env) stdout() io.Writer {
	if e == nil || e.Stdout == nil {
		return io.Discard
	}
	return e.Stdout
}

func (e *Env) layout() userdata.Layout {
	if e == nil {
		return userdata.Layout{}
	}
	return e.Layout
}

func (e *Env) stderr() io.Writer {
	if e == nil || e.Stderr == nil {
		return io.Discard
	}
	return e.Stderr
}

// Runtime loads units written in one language.
type Runtime interface {
	// Ext is the file extension the runtime claims, including the dot.
	Ext() string
	// Validate checks src statically: it must parse and define a top-level
	// run entry point. It never executes the source.
	Validate(name string, src []byte) error
	// Load evaluates src once and returns its entry point.
	Load(ctx context.Context, path string, src []byte, env *Env) (Entrypoint, error)
}

// Set is the collection of runtimes keyed by extension.
type Set struct {
	byExt map[string]Runtime
}

// NewSet builds a Set. A later runtime with the same extension replaces an
// earlier one.
func NewSet(rts ...Runtime) *Set {
	s := &Set{byExt: make(map[string]Runtime, len(rts))}
	for _, rt := range rts {
		s.byExt[strings.ToLower(rt.Ext())] = rt
	}
	return s
}

// Default returns the shell and Lua runtimes.
func Default() *Set {
	return NewSet(&ShellRuntime{}, &LuaRuntime{})
}

// ForPath returns the runtime claiming the path's extension.
func (s *Set) ForPath(path string) (Runtime, bool) {
	rt, ok := s.byExt[strings.ToLower(filepath.Ext(path))]
	return rt, ok
}

// Exts lists the qualifying extensions, sorted.
func (s *Set) Exts() []string {
	exts := make([]string, 0, len(s.byExt))
	for ext := range s.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Qualifies reports whether a file name is a loadable unit: it has a known
// extension and does not start with "_" or ".".
func (s *Set) Qualifies(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := s.ForPath(base)
	return ok && UnitName(base) != ""
}

// UnitName is the command name of a unit file: its base name without extension.
func UnitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValidationError reports a unit source that failed static checks.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ErrMissingRun is the reason used when no run entry point is defined.
const ErrMissingRun = "missing run()"

// ExitRequest is returned by an entry point that asked the shell to exit.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit requested (status %d)", e.Code)
}

// IsExit reports whether err carries an exit request and returns its code.
func IsExit(err error) (int, bool) {
	var req *ExitRequest
	if errors.As(err, &req) {
		return req.Code, true
	}
	return 0, false
}

// workingDir returns the process working directory, or "." if it is gone.
func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

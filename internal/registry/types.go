package registry

import (
	"fmt"

	"github.com/randompixle/Flame/internal/runtime"
)

// Source is a directory of unit files.
type Source struct {
	Name          string
	Dir           string
	Origin        runtime.Origin
	AllowOverride bool
}

// Unit is a loaded, invocable command.
type Unit struct {
	Name    string
	Origin  runtime.Origin
	Path    string // empty for core commands
	Summary string
	Entry   runtime.Entrypoint
}

// CoreCommand is a command implemented in Go and compiled into the shell.
type CoreCommand struct {
	Name    string
	Summary string
	Entry   runtime.Entrypoint
}

// LoadError reports a unit file that could not be loaded. It never aborts a
// refresh; the unit is skipped.
type LoadError struct {
	Path string
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

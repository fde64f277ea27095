package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/randompixle/Flame/internal/logging"
	"github.com/randompixle/Flame/internal/pkm"
	"github.com/randompixle/Flame/internal/registry"
	"github.com/randompixle/Flame/internal/runtime"
	"github.com/randompixle/Flame/internal/userdata"
)

// DefaultReloadReason is reported when a reload was requested without one.
const DefaultReloadReason = "changes detected"

// Shell is one interactive session.
type Shell struct {
	layout   userdata.Layout
	runtimes *runtime.Set
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	reader   LineReader
	launcher Launcher
	color    bool
	pkmOpts  []pkm.Option
	getenv   func(string) string

	reg *registry.Registry
	env *runtime.Env
	pkm *pkm.Manager

	mu           sync.Mutex
	reloadReason string
	reloadWanted bool

	status int
	exited bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithIO sets the streams handed to units and host processes.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(s *Shell) {
		s.stdin, s.stdout, s.stderr = stdin, stdout, stderr
	}
}

// WithReader sets the line source. The default reads stdin, using a
// terminal line editor when stdin is a TTY.
func WithReader(r LineReader) Option {
	return func(s *Shell) { s.reader = r }
}

// WithLauncher sets how unknown commands are run on the host.
func WithLauncher(l Launcher) Option {
	return func(s *Shell) { s.launcher = l }
}

// WithRuntimes sets the unit runtimes.
func WithRuntimes(rts *runtime.Set) Option {
	return func(s *Shell) { s.runtimes = rts }
}

// WithColor toggles the colored prompt.
func WithColor(on bool) Option {
	return func(s *Shell) { s.color = on }
}

// WithPackageOptions passes options through to the package manager.
func WithPackageOptions(opts ...pkm.Option) Option {
	return func(s *Shell) { s.pkmOpts = append(s.pkmOpts, opts...) }
}

// WithGetenv sets the environment lookup used when splitting lines.
func WithGetenv(getenv func(string) string) Option {
	return func(s *Shell) { s.getenv = getenv }
}

// New builds a shell over layout. The registry is empty until Refresh.
func New(layout userdata.Layout, opts ...Option) *Shell {
	s := &Shell{
		layout:   layout,
		runtimes: runtime.Default(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		launcher: ExecLauncher{},
		getenv:   os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.env = &runtime.Env{
		Stdin:    s.stdin,
		Stdout:   s.stdout,
		Stderr:   s.stderr,
		Layout:   layout,
		Reloader: s,
	}
	s.reg = registry.New(s.runtimes, s.env, s.coreCommands(),
		registry.Source{Name: "builtin", Dir: layout.BuiltinDir, Origin: runtime.OriginBuiltin},
		registry.Source{Name: "installed", Dir: layout.ExtensionDir, Origin: runtime.OriginInstalled, AllowOverride: true},
	)
	s.env.Names = s.reg.Names

	pkmOpts := append([]pkm.Option{
		pkm.WithRuntimes(s.runtimes),
		pkm.WithOutput(s.stdout),
	}, s.pkmOpts...)
	pkmOpts = append(pkmOpts, pkm.WithReserved(s.reg), pkm.WithReloader(s))
	s.pkm = pkm.New(layout, pkmOpts...)

	if s.reader == nil {
		s.reader = NewReader(s.stdin, s.stdout, s.reg.Names)
	}
	return s
}

// Registry returns the shell's command registry.
func (s *Shell) Registry() *registry.Registry { return s.reg }

// Packages returns the shell's package manager.
func (s *Shell) Packages() *pkm.Manager { return s.pkm }

// Status is the outcome of the last executed line: 0 on success, the host
// exit code, or 1 for a failed unit. After an exit request it is the
// requested code.
func (s *Shell) Status() int { return s.status }

// ExitCode reports whether a line asked the shell to exit, and with which
// code.
func (s *Shell) ExitCode() (int, bool) { return s.status, s.exited }

// Refresh rebuilds the registry now, printing a warning per unit that fails
// to load.
func (s *Shell) Refresh(ctx context.Context) {
	for _, lerr := range s.reg.Refresh(ctx) {
		fmt.Fprintf(s.stderr, "[warn] %v\n", lerr)
		logging.Warn().Str("path", lerr.Path).Err(lerr.Err).Msg("unit load failed")
	}
}

// RequestReload marks the registry stale. It is safe to call from any
// goroutine; the rebuild happens on the loop goroutine after the current
// line completes. The last non-empty reason wins.
func (s *Shell) RequestReload(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadWanted = true
	if reason != "" {
		s.reloadReason = reason
	}
}

// takeReload returns the pending reason and clears the request.
func (s *Shell) takeReload() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.reloadWanted {
		return "", false
	}
	reason := s.reloadReason
	if reason == "" {
		reason = DefaultReloadReason
	}
	s.reloadWanted, s.reloadReason = false, ""
	return reason, true
}

// applyReload refreshes the registry if a reload is pending.
func (s *Shell) applyReload(ctx context.Context) {
	reason, ok := s.takeReload()
	if !ok {
		return
	}
	s.Refresh(ctx)
	fmt.Fprintf(s.stdout, "[flame] reloaded commands (%s)\n", reason)
}

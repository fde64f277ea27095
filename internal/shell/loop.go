package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/randompixle/Flame/internal/logging"
	"github.com/randompixle/Flame/internal/runtime"
)

// Run reads and executes lines until end of input, an exit request, or ctx
// is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := s.reader.ReadLine(s.prompt())
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.stdout)
			return nil
		case errors.Is(err, ErrInterrupt):
			fmt.Fprintln(s.stdout)
			continue
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		if s.ExecLine(ctx, line) {
			return nil
		}
	}
}

// ExecLine runs one input line and then applies any pending reload. It
// reports whether the line asked the shell to exit.
func (s *Shell) ExecLine(ctx context.Context, line string) bool {
	args, err := shell.Fields(line, s.getenv)
	if err != nil {
		fmt.Fprintf(s.stderr, "[flame] parse error: %v\n", err)
		s.status = 2
		return false
	}
	if len(args) == 0 {
		return false
	}

	exit := s.dispatch(ctx, args)
	if !exit {
		s.applyReload(ctx)
	}
	return exit
}

func (s *Shell) dispatch(ctx context.Context, args []string) bool {
	name := args[0]
	stop := ignoreInterrupts()
	defer stop()

	unit, ok := s.reg.Lookup(name)
	if !ok {
		s.status = s.runHost(ctx, args)
		return false
	}

	logging.Debug().Str("unit", name).Str("origin", unit.Origin.String()).Strs("args", args[1:]).Msg("dispatch")
	err := unit.Entry(ctx, s.env, args[1:])
	if code, exit := runtime.IsExit(err); exit {
		s.status, s.exited = code, true
		return true
	}
	if err != nil {
		fmt.Fprintf(s.stderr, "[flame] %s failed: %v\n", name, err)
		s.status = 1
		return false
	}
	s.status = 0
	return false
}

func (s *Shell) runHost(ctx context.Context, args []string) int {
	code, err := s.launcher.Launch(ctx, args, s.stdin, s.stdout, s.stderr)
	switch {
	case errors.Is(err, ErrCommandNotFound):
		fmt.Fprintf(s.stderr, "flame: command '%s' not found\n", args[0])
		return 127
	case err != nil:
		fmt.Fprintf(s.stderr, "[flame] system command failed: %v\n", err)
		return 1
	case code != 0:
		fmt.Fprintf(s.stderr, "[flame] system command exited with %d\n", code)
	}
	return code
}

// ignoreInterrupts keeps SIGINT from ending the shell while a command runs.
// Children in the foreground process group still receive it.
func ignoreInterrupts() func() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	return func() { signal.Stop(c) }
}

// cwd returns the working directory with the home directory shortened to ~.
func (s *Shell) cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return "?"
	}
	if home := s.getenv("HOME"); home != "" {
		if dir == home {
			return "~"
		}
		if strings.HasPrefix(dir, home+string(os.PathSeparator)) {
			return "~" + dir[len(home):]
		}
	}
	return dir
}

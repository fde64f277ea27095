package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ShellRuntime runs bash-dialect units on the mvdan.cc/sh interpreter. A unit
// defines a top-level function named run; its arguments arrive as "$@".
//
// Two extra commands are visible to shell units:
//
//	flame-commands          print the registered command names
//	flame-reload [reason]   ask the shell to reload its commands
type ShellRuntime struct{}

// Ext implements Runtime.
func (*ShellRuntime) Ext() string { return ".sh" }

func parseShell(name string, src []byte) (*syntax.File, error) {
	return syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(bytes.NewReader(src), name)
}

func definesRun(f *syntax.File) bool {
	for _, stmt := range f.Stmts {
		if fn, ok := stmt.Cmd.(*syntax.FuncDecl); ok && fn.Name != nil && fn.Name.Value == "run" {
			return true
		}
	}
	return false
}

// Validate implements Runtime.
func (*ShellRuntime) Validate(name string, src []byte) error {
	f, err := parseShell(name, src)
	if err != nil {
		return &ValidationError{Name: name, Reason: fmt.Sprintf("parse error: %v", err)}
	}
	if !definesRun(f) {
		return &ValidationError{Name: name, Reason: ErrMissingRun}
	}
	return nil
}

var callRun = mustParseStmt(`run "$@"`)

func mustParseStmt(src string) *syntax.Stmt {
	f, err := syntax.NewParser().Parse(strings.NewReader(src), "")
	if err != nil {
		panic(err)
	}
	return f.Stmts[0]
}

type shellUnit struct {
	runner *interp.Runner
	env    *Env
}

// Load implements Runtime. The file's top level is evaluated once in a fresh
// interpreter, like importing a module.
func (*ShellRuntime) Load(ctx context.Context, path string, src []byte, env *Env) (Entrypoint, error) {
	file, err := parseShell(path, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	u := &shellUnit{env: env}
	environ := os.Environ()
	if env != nil {
		environ = append(environ, env.Layout.Environ()...)
	}
	runner, err := interp.New(
		interp.Env(expand.ListEnviron(environ...)),
		interp.Dir(workingDir()),
		interp.StdIO(nil, env.stdout(), env.stderr()),
		interp.ExecHandlers(u.extraCommands),
	)
	if err != nil {
		return nil, fmt.Errorf("creating interpreter: %w", err)
	}

	if err := runner.Run(ctx, file); err != nil || runner.Exited() {
		if runner.Exited() {
			return nil, errors.New("unit exited while loading")
		}
		return nil, fmt.Errorf("evaluating unit: %w", err)
	}
	if runner.Funcs["run"] == nil {
		return nil, &ValidationError{Name: UnitName(path), Reason: ErrMissingRun}
	}
	u.runner = runner
	return u.invoke, nil
}

func (u *shellUnit) invoke(ctx context.Context, env *Env, args []string) error {
	if env == nil {
		env = &Env{}
	}
	u.env = env
	if err := interp.StdIO(env.Stdin, env.stdout(), env.stderr())(u.runner); err != nil {
		return fmt.Errorf("attaching stdio: %w", err)
	}
	u.runner.Dir = workingDir()
	u.runner.Params = args

	err := u.runner.Run(ctx, callRun)
	if u.runner.Exited() {
		var status interp.ExitStatus
		code := 0
		if errors.As(err, &status) {
			code = int(status)
		}
		return &ExitRequest{Code: code}
	}
	return err
}

func (u *shellUnit) extraCommands(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		switch args[0] {
		case "flame-commands":
			hc := interp.HandlerCtx(ctx)
			for _, name := range u.env.Commands() {
				fmt.Fprintln(hc.Stdout, name)
			}
			return nil
		case "flame-reload":
			u.env.RequestReload(strings.Join(args[1:], " "))
			return nil
		}
		return next(ctx, args)
	}
}

package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/randompixle/Flame/internal/platform"
	"github.com/randompixle/Flame/internal/registry"
	"github.com/randompixle/Flame/internal/runtime"
)

// CoreNames lists the commands compiled into the shell.
func CoreNames() []string {
	return []string{"cd", "exit", "pkm", "reload"}
}

// coreCommands are compiled into the shell. They need the shell's own state
// (working directory, exit, reload, the package manager) and cannot be
// shadowed by unit files.
func (s *Shell) coreCommands() []registry.CoreCommand {
	return []registry.CoreCommand{
		{Name: "cd", Summary: "Change the working directory", Entry: s.cd},
		{Name: "exit", Summary: "Leave the shell", Entry: exitCommand},
		{Name: "reload", Summary: "Reload all commands", Entry: s.reload},
		{Name: "pkm", Summary: "Install, update and remove commands", Entry: s.pkmCommand},
	}
}

func (s *Shell) cd(_ context.Context, env *runtime.Env, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("too many arguments")
	}
	target := s.getenv("HOME")
	if len(args) == 1 {
		target = args[0]
	}
	if target == "-" {
		target = s.getenv("OLDPWD")
		if target == "" {
			return fmt.Errorf("OLDPWD not set")
		}
		fmt.Fprintln(env.Stdout, target)
	}
	if target == "" {
		return fmt.Errorf("HOME not set")
	}

	real, err := filepath.EvalSymlinks(target)
	if err != nil {
		return err
	}
	real, err = filepath.Abs(real)
	if err != nil {
		return err
	}
	if platform.IsProtected(real) {
		return fmt.Errorf("refusing to enter protected: %s", real)
	}

	prev, _ := os.Getwd()
	if err := os.Chdir(real); err != nil {
		return err
	}
	os.Setenv("OLDPWD", prev)
	os.Setenv("PWD", real)
	return nil
}

func exitCommand(_ context.Context, _ *runtime.Env, args []string) error {
	code := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("numeric argument required: %s", args[0])
		}
		code = n
	}
	return &runtime.ExitRequest{Code: code}
}

func (s *Shell) reload(_ context.Context, _ *runtime.Env, _ []string) error {
	s.RequestReload("requested")
	return nil
}

func (s *Shell) pkmCommand(ctx context.Context, _ *runtime.Env, args []string) error {
	s.pkm.Handle(ctx, args)
	return nil
}

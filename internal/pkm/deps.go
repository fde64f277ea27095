package pkm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/randompixle/Flame/internal/logging"
)

// declarations returns the values of "#<key>:" lines in src. Lua units write
// the marker inside a comment, as "--#<key>:".
func declarations(src, key string) []string {
	marker := "#" + key + ":"
	var values []string
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "--") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "--"))
		}
		if len(line) < len(marker) || !strings.EqualFold(line[:len(marker)], marker) {
			continue
		}
		values = append(values, line[len(marker):])
	}
	return values
}

// ParseRequirements collects the dependencies declared by "#require:" lines.
// Each line may list several, comma-separated. Order is preserved and
// duplicates dropped.
func ParseRequirements(src string) []string {
	seen := make(map[string]bool)
	var reqs []string
	for _, value := range declarations(src, "require") {
		for _, item := range strings.Split(value, ",") {
			item = strings.TrimSpace(item)
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			reqs = append(reqs, item)
		}
	}
	return reqs
}

// DependencyInstaller makes declared dependencies available.
type DependencyInstaller interface {
	Install(ctx context.Context, deps []string) error
}

// CommandInstaller treats dependencies as executables. Those already on PATH
// are skipped; the rest are passed as trailing arguments to Command, e.g.
// "apt-get install -y" or "brew install".
type CommandInstaller struct {
	Command string
	Stdout  io.Writer
	Stderr  io.Writer
	// LookPath defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// Missing returns the dependencies not found on PATH.
func (c *CommandInstaller) Missing(deps []string) []string {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var missing []string
	for _, dep := range deps {
		if _, err := lookPath(dep); err != nil {
			missing = append(missing, dep)
		}
	}
	return missing
}

// Install implements DependencyInstaller. It blocks until the installer exits.
func (c *CommandInstaller) Install(ctx context.Context, deps []string) error {
	missing := c.Missing(deps)
	if len(missing) == 0 {
		return nil
	}
	if strings.TrimSpace(c.Command) == "" {
		return &DependencyError{Deps: missing, Err: errors.New("not found on PATH and no dependency_installer is configured")}
	}

	argv, err := shell.Fields(c.Command, nil)
	if err != nil || len(argv) == 0 {
		return &DependencyError{Deps: missing, Err: fmt.Errorf("parsing dependency_installer %q: %v", c.Command, err)}
	}
	argv = append(argv, missing...)

	logging.Debug().Strs("argv", argv).Msg("installing dependencies")
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Run(); err != nil {
		return &DependencyError{Deps: missing, Err: err}
	}
	return nil
}

package shell

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os/exec"
)

// ErrCommandNotFound is returned by a Launcher when the program does not
// exist on the host.
var ErrCommandNotFound = errors.New("command not found")

// Launcher runs a host program and waits for it.
type Launcher interface {
	Launch(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) (int, error)
}

// ExecLauncher runs programs found on PATH.
type ExecLauncher struct{}

// Launch implements Launcher. A non-zero exit status is returned as the code
// with a nil error.
func (ExecLauncher) Launch(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return 0, ErrCommandNotFound
		}
		return 0, err
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err = cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, err
	}
	return 0, nil
}

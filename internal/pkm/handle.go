package pkm

import (
	"context"
	"errors"
	"strings"
)

const usage = `pkm usage:
  pkm install <url> [name]
  pkm update <name|--all>
  pkm remove <name>
  pkm list
  pkm info <name>
`

// Handle runs one pkm invocation from the shell. Problems are printed,
// never returned, so a failing package operation cannot end the session.
func (m *Manager) Handle(ctx context.Context, args []string) {
	if len(args) == 0 {
		m.printf("%s", usage)
		return
	}

	var err error
	switch {
	case args[0] == "install" && (len(args) == 2 || len(args) == 3):
		name := ""
		if len(args) == 3 {
			name = args[2]
		}
		err = m.Install(ctx, args[1], name)
	case args[0] == "update" && len(args) == 2 && args[1] == "--all":
		err = m.UpdateAll(ctx)
	case args[0] == "update" && len(args) == 2:
		err = m.Update(ctx, args[1])
	case args[0] == "remove" && len(args) == 2:
		err = m.Remove(args[1])
	case args[0] == "list" && len(args) == 1:
		err = m.List(m.out)
	case args[0] == "info" && len(args) == 2:
		var info *PackageInfo
		if info, err = m.Info(args[1]); err == nil {
			info.Print(m.out)
		}
	default:
		m.printf("%s", usage)
		return
	}

	if err != nil {
		m.printf("%s\n", FormatError(err))
	}
}

// FormatError renders a pkm failure as a single line. Mismatches with the
// installed state read "pkm: ...", everything else "pkm error: ...".
func FormatError(err error) string {
	var se *StateError
	if errors.As(err, &se) {
		return "pkm: " + err.Error()
	}
	return "pkm error: " + err.Error()
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}

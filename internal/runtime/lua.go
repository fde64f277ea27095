package runtime

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

// LuaRuntime runs Lua 5.2 units on go-lua. A unit defines a global function
// run that receives its arguments as an array table. A global flame table
// exposes the shell context:
//
//	flame.commands()               sorted command names
//	flame.request_reload(reason)   reload after this command returns
//	flame.exit([code])             leave the shell
//	flame.root_dir, flame.commands_dir, flame.installed_dir, flame.manifest_path
type LuaRuntime struct{}

// Ext implements Runtime.
func (*LuaRuntime) Ext() string { return ".lua" }

// Validate implements Runtime. The chunk is compiled but not called.
func (*LuaRuntime) Validate(name string, src []byte) error {
	l := lua.NewState()
	if err := lua.LoadBuffer(l, string(src), name, "t"); err != nil {
		return &ValidationError{Name: name, Reason: fmt.Sprintf("parse error: %v", err)}
	}
	if !luaDefinesRun(src) {
		return &ValidationError{Name: name, Reason: ErrMissingRun}
	}
	return nil
}

type luaUnit struct {
	state *lua.State
	env   *Env
	exit  *ExitRequest
}

// Load implements Runtime.
func (*LuaRuntime) Load(_ context.Context, path string, src []byte, env *Env) (Entrypoint, error) {
	u := &luaUnit{state: lua.NewState(), env: env}
	l := u.state
	lua.OpenLibraries(l)
	u.installContext()

	if err := lua.LoadBuffer(l, string(src), filepath.Base(path), "t"); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		if u.exit != nil {
			return nil, errors.New("unit exited while loading")
		}
		return nil, fmt.Errorf("evaluating unit: %w", err)
	}

	l.Global("run")
	ok := l.IsFunction(-1)
	l.Pop(1)
	if !ok {
		return nil, &ValidationError{Name: UnitName(path), Reason: ErrMissingRun}
	}
	return u.invoke, nil
}

func (u *luaUnit) invoke(_ context.Context, env *Env, args []string) error {
	l := u.state
	u.env = env
	u.exit = nil
	top := l.Top()
	defer l.SetTop(top)

	l.Global("run")
	l.NewTable()
	for i, arg := range args {
		l.PushString(arg)
		l.RawSetInt(-2, i+1)
	}
	err := l.ProtectedCall(1, 0, 0)
	if u.exit != nil {
		return u.exit
	}
	return err
}

func (u *luaUnit) installContext() {
	l := u.state
	layout := u.env.layout()

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "commands", Function: u.commands},
		{Name: "request_reload", Function: u.requestReload},
		{Name: "exit", Function: u.requestExit},
	}, 0)
	for _, field := range [][2]string{
		{"root_dir", layout.Root},
		{"commands_dir", layout.BuiltinDir},
		{"installed_dir", layout.ExtensionDir},
		{"manifest_path", layout.ManifestPath},
	} {
		l.PushString(field[1])
		l.SetField(-2, field[0])
	}
	l.SetGlobal("flame")

	l.Register("print", u.print)
}

func (u *luaUnit) commands(l *lua.State) int {
	l.NewTable()
	for i, name := range u.env.Commands() {
		l.PushString(name)
		l.RawSetInt(-2, i+1)
	}
	return 1
}

func (u *luaUnit) requestReload(l *lua.State) int {
	u.env.RequestReload(lua.OptString(l, 1, ""))
	return 0
}

func (u *luaUnit) requestExit(l *lua.State) int {
	u.exit = &ExitRequest{Code: lua.OptInteger(l, 1, 0)}
	lua.Errorf(l, "exit")
	return 0
}

func (u *luaUnit) print(l *lua.State) int {
	n := l.Top()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, luaText(l, i))
	}
	fmt.Fprintln(u.env.stdout(), strings.Join(parts, "\t"))
	return 0
}

func luaText(l *lua.State, index int) string {
	switch l.TypeOf(index) {
	case lua.TypeString, lua.TypeNumber:
		s, _ := l.ToString(index)
		return s
	case lua.TypeBoolean:
		if l.ToBoolean(index) {
			return "true"
		}
		return "false"
	case lua.TypeNil:
		return "nil"
	default:
		return lua.TypeNameOf(l, index)
	}
}

// Package runtime defines what a command unit is to the shell: a loaded
// Entrypoint invoked with an explicit Env. Units are source files run by an
// embedded interpreter chosen by file extension. Shell units (.sh) run on
// mvdan.cc/sh and Lua units (.lua) run on go-lua. Each runtime can validate a
// source statically, without executing it, which is what the package manager
// relies on before writing anything to disk.
package runtime

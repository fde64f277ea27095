// Package cli defines the flame command tree. Running flame without a
// subcommand starts the interactive shell.
package cli

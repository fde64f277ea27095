package pkm

import (
	"errors"
	"fmt"
	"strings"
)

// ConflictReason explains why a name cannot be installed.
type ConflictReason string

const (
	ReasonReserved ConflictReason = "reserved"
	ReasonExists   ConflictReason = "already exists"
)

// ConflictError reports an install whose name collides with an existing
// command.
type ConflictError struct {
	Name   string
	Reason ConflictReason
}

func (e *ConflictError) Error() string {
	if e.Reason == ReasonReserved {
		return fmt.Sprintf("%s is reserved", e.Name)
	}
	return fmt.Sprintf("%s %s", e.Name, e.Reason)
}

// StateError reports a request that does not match what is installed, such
// as updating a name with no manifest record.
type StateError struct {
	Name    string
	Problem string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s", e.Name, e.Problem)
}

func notInstalled(name string) error {
	return &StateError{Name: name, Problem: "is not installed"}
}

// IsNotInstalled reports whether err says a name is not installed.
func IsNotInstalled(err error) bool {
	var se *StateError
	return errors.As(err, &se) && se.Problem == "is not installed"
}

// DependencyError reports declared dependencies that could not be installed.
// It never undoes the unit install that declared them.
type DependencyError struct {
	Deps []string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", strings.Join(e.Deps, ", "), e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

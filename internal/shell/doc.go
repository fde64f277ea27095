// Package shell implements Flame's dispatch loop: it reads a line, splits it
// with shell quoting rules, runs the named unit from the registry or falls
// back to a host process, and applies pending reloads between lines.
package shell

// Package userdata manages the ~/.flame directory: the Commands/ directory of
// built-in units, the Installed/ directory the package manager writes to, and
// the manifest beside them. It resolves paths, seeds the built-in units on
// first run, and reports layout health for the doctor command.
package userdata

// Package pkm is the package manager behind the shell's pkm command. It
// installs units from remote locators (single files or zip archives) into the
// extension directory, records their provenance in the manifest, installs
// declared dependencies, and asks the shell to reload afterwards.
//
// Every candidate source is validated before anything is written, so a
// rejected install leaves the extension directory and manifest untouched.
package pkm

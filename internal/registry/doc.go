// Package registry discovers command units and resolves names to them. Core
// commands are registered first, then each source directory is scanned in
// order; a source that allows override replaces same-named units from earlier
// sources, except core ones. Refresh always rebuilds from scratch and swaps
// the result in one step.
package registry

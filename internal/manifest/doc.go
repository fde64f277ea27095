// Package manifest persists the provenance of installed units: for every
// name, where it was fetched from and whether it came from a single file or a
// zip archive member. The document is JSON of the form
//
//	{"commands": {"<name>": {"source": "<locator>", "type": "single"|"zip", "member": "<path>"}}}
//
// An embedded JSON schema describes the same shape for diagnostics.
package manifest

package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/afero"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/manifest.schema.json
var schemaBytes []byte

const schemaURL = "manifest.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
	printer    = message.NewPrinter(language.English)
)

// Report is the outcome of checking a manifest document against the schema.
type Report struct {
	Valid  bool
	Issues []Issue
}

// Issue is one schema violation. Path is a JSON pointer into the document,
// empty for the document root.
type Issue struct {
	Path    string
	Message string
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			schemaErr = fmt.Errorf("embedded manifest schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("embedded manifest schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Validate checks a manifest document. Violations are reported in the
// Report; the error is for JSON that does not parse.
func Validate(data []byte) (*Report, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	err = s.Validate(inst)
	if err == nil {
		return &Report{Valid: true}, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}

	var issues []Issue
	leafIssues(verr, &issues)
	if len(issues) == 0 {
		issues = []Issue{{Message: verr.Error()}}
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return &Report{Issues: issues}, nil
}

// ValidateFile reads the manifest at path from fsys and validates it.
func ValidateFile(fsys afero.Fs, path string) (*Report, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Validate(data)
}

// leafIssues collects the innermost causes, which name the offending value.
func leafIssues(verr *jsonschema.ValidationError, into *[]Issue) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			leafIssues(cause, into)
		}
		return
	}
	if verr.ErrorKind == nil {
		return
	}
	var path string
	if len(verr.InstanceLocation) > 0 {
		path = "/" + strings.Join(verr.InstanceLocation, "/")
	}
	*into = append(*into, Issue{Path: path, Message: verr.ErrorKind.LocalizedString(printer)})
}

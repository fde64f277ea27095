package manifest

import (
	"errors"
	"fmt"
	"sort"
)

// Type is how a unit was obtained.
type Type string

const (
	TypeSingle Type = "single"
	TypeZip    Type = "zip"
)

// Record is the provenance of one installed unit.
type Record struct {
	Source  string `json:"source"`
	Type    Type   `json:"type"`
	Member  string `json:"member,omitempty"`
	Version string `json:"version,omitempty"`
}

// Manifest maps installed unit names to their records.
type Manifest struct {
	Commands map[string]Record `json:"commands"`
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{Commands: map[string]Record{}}
}

// Names returns the recorded names, sorted.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Commands))
	for name := range m.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the record for name.
func (m *Manifest) Get(name string) (Record, bool) {
	r, ok := m.Commands[name]
	return r, ok
}

// Put records or replaces the provenance of name.
func (m *Manifest) Put(name string, r Record) {
	if m.Commands == nil {
		m.Commands = map[string]Record{}
	}
	m.Commands[name] = r
}

// Delete drops the record for name, if any.
func (m *Manifest) Delete(name string) {
	delete(m.Commands, name)
}

// Check reports whether a record is structurally usable for an update.
func (r Record) Check() error {
	if r.Source == "" {
		return errors.New("missing source")
	}
	switch r.Type {
	case TypeSingle:
		return nil
	case TypeZip:
		if r.Member == "" {
			return errors.New("missing member path")
		}
		return nil
	case "":
		return errors.New("missing type")
	default:
		return fmt.Errorf("unknown type %q", r.Type)
	}
}

package pkm

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/randompixle/Flame/internal/logging"
	"github.com/randompixle/Flame/internal/manifest"
)

// Remove deletes the installed unit for name and drops its record. The file
// must exist; an orphaned record is pruned but still reported as not
// installed.
func (m *Manager) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	p, ok := m.installedPath(name)
	if !ok {
		m.pruneOrphan(name)
		return notInstalled(name)
	}
	if err := m.fs.Remove(p); err != nil {
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}

	man, err := m.store.Load()
	if err != nil {
		return err
	}
	man.Delete(name)
	if err := m.store.Save(man); err != nil {
		return err
	}
	m.printf("removed %s\n", name)
	m.requestReload(ReasonPackageRemoved)
	return nil
}

func (m *Manager) pruneOrphan(name string) {
	man, err := m.store.Load()
	if err != nil {
		return
	}
	if _, tracked := man.Get(name); !tracked {
		return
	}
	man.Delete(name)
	if err := m.store.Save(man); err != nil {
		logging.Warn().Err(err).Str("name", name).Msg("could not prune orphaned record")
		return
	}
	logging.Info().Str("name", name).Msg("pruned orphaned manifest record")
}

// Records returns the manifest records keyed by name.
func (m *Manager) Records() (map[string]manifest.Record, error) {
	man, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return man.Commands, nil
}

// List writes "name -> source" for each record, sorted by name.
func (m *Manager) List(w io.Writer) error {
	records, err := m.Records()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "no installed packages")
		return nil
	}
	for _, name := range sortedKeys(records) {
		fmt.Fprintf(w, "%s -> %s\n", name, records[name].Source)
	}
	return nil
}

// PackageInfo describes one installed package.
type PackageInfo struct {
	Name     string          `json:"name"`
	Record   manifest.Record `json:"record"`
	Tracked  bool            `json:"tracked"`
	Path     string          `json:"path,omitempty"`
	Version  string          `json:"version,omitempty"`
	Requires []string        `json:"requires,omitempty"`
}

// Info gathers what is known about name from its record and its file.
func (m *Manager) Info(name string) (*PackageInfo, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	records, err := m.Records()
	if err != nil {
		return nil, err
	}
	rec, tracked := records[name]
	p, present := m.installedPath(name)
	if !tracked && !present {
		return nil, notInstalled(name)
	}

	info := &PackageInfo{Name: name, Record: rec, Tracked: tracked}
	if present {
		info.Path = p
		src, err := afero.ReadFile(m.fs, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		info.Version = DeclaredVersion(string(src))
		info.Requires = ParseRequirements(string(src))
	}
	return info, nil
}

// Print writes info in the key: value form used by pkm info.
func (info *PackageInfo) Print(w io.Writer) {
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(w, "%-9s %s\n", k+":", v)
		}
	}
	row("name", info.Name)
	if info.Tracked {
		row("source", info.Record.Source)
		row("type", string(info.Record.Type))
		row("member", info.Record.Member)
	} else {
		row("source", "(untracked)")
	}
	if info.Path != "" {
		row("path", info.Path)
	} else {
		row("path", "(missing)")
	}
	row("version", info.Version)
	if len(info.Requires) > 0 {
		row("requires", joinComma(info.Requires))
	}
}

package pkm

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/randompixle/Flame/internal/fetch"
	"github.com/randompixle/Flame/internal/logging"
	"github.com/randompixle/Flame/internal/manifest"
	"github.com/randompixle/Flame/internal/runtime"
)

// Reload reasons passed to the shell after the installed set changes.
const (
	ReasonPackagesUpdated = "packages updated"
	ReasonPackageRemoved  = "package removed"
)

// placement describes a unit written to the extension directory.
type placement struct {
	Name       string
	Path       string
	OldVersion string
	NewVersion string
}

// Install fetches locator and installs it. A locator ending in .zip installs
// every qualifying archive member; anything else is a single unit, named
// name when given and after the locator's file stem otherwise.
func (m *Manager) Install(ctx context.Context, locator, name string) error {
	resolved, err := m.resolver.Resolve(locator)
	if err != nil {
		return err
	}

	if isArchive(resolved) {
		n, err := m.installArchive(ctx, locator, resolved)
		if err != nil {
			return err
		}
		if n > 0 {
			m.requestReload(ReasonPackagesUpdated)
		}
		return nil
	}

	p, err := m.installSingle(ctx, locator, resolved, name, false)
	if err != nil {
		return err
	}
	m.printf("installed %s\n", p.Name)
	m.requestReload(ReasonPackagesUpdated)
	return nil
}

// installSingle places one unit. Every check runs before the first write, so
// a rejected install leaves the extension directory and manifest as they
// were. With overwrite set the name may already be installed, which is how
// updates replay an install.
func (m *Manager) installSingle(ctx context.Context, locator, resolved, override string, overwrite bool) (*placement, error) {
	data, err := m.fetcher.Fetch(ctx, resolved)
	if err != nil {
		return nil, err
	}
	src, err := fetch.Text(resolved, data)
	if err != nil {
		return nil, err
	}

	name, ext := m.unitTarget(urlPath(resolved), override)
	rt, ok := m.runtimes.ForPath("unit" + ext)
	if !ok {
		return nil, &runtime.ValidationError{
			Name:   name,
			Reason: fmt.Sprintf("unsupported unit type %q (want one of %s)", ext, strings.Join(m.runtimes.Exts(), ", ")),
		}
	}
	if err := rt.Validate(name, []byte(src)); err != nil {
		return nil, fmt.Errorf("downloaded command %w", err)
	}
	if name == "" {
		return nil, errors.New("unable to determine command name")
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	if !overwrite {
		if m.isReserved(name) {
			return nil, &ConflictError{Name: name, Reason: ReasonReserved}
		}
		if _, exists := m.installedPath(name); exists {
			return nil, &ConflictError{Name: name, Reason: ReasonExists}
		}
	}

	p, err := m.place(name, ext, src)
	if err != nil {
		return nil, err
	}
	m.installDeps(ctx, src)

	man, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	man.Put(name, manifest.Record{Source: locator, Type: manifest.TypeSingle, Version: p.NewVersion})
	if err := m.store.Save(man); err != nil {
		return nil, err
	}
	return p, nil
}

// place writes src as name+ext, replacing any unit of the same name that
// used a different extension.
func (m *Manager) place(name, ext, src string) (*placement, error) {
	p := &placement{
		Name:       name,
		Path:       filepath.Join(m.layout.ExtensionDir, name+ext),
		NewVersion: DeclaredVersion(src),
	}
	prev, hadPrev := m.installedPath(name)
	if hadPrev {
		if old, err := afero.ReadFile(m.fs, prev); err == nil {
			p.OldVersion = DeclaredVersion(string(old))
		}
	}
	if err := m.writeUnit(p.Path, src); err != nil {
		return nil, err
	}
	if hadPrev && prev != p.Path {
		if err := m.fs.Remove(prev); err != nil {
			logging.Warn().Err(err).Str("path", prev).Msg("could not remove replaced unit")
		}
	}
	logging.Debug().Str("name", name).Str("path", p.Path).Msg("unit placed")
	return p, nil
}

// unitTarget derives the command name and file extension from a locator
// path and an optional override. An override carrying a known extension
// picks the runtime; otherwise the locator's extension does.
func (m *Manager) unitTarget(locatorPath, override string) (name, ext string) {
	base := path.Base(locatorPath)
	if base == "." || base == "/" {
		base = ""
	}
	ext = strings.ToLower(path.Ext(base))
	name = strings.TrimSuffix(base, path.Ext(base))

	if override != "" {
		name = override
		if oe := path.Ext(override); oe != "" {
			if _, ok := m.runtimes.ForPath(override); ok {
				ext = strings.ToLower(oe)
				name = strings.TrimSuffix(override, oe)
			}
		}
	}
	return name, ext
}

// checkName rejects names that could not be looked up as a command or that
// would escape the extension directory.
func checkName(name string) error {
	if strings.ContainsAny(name, `/\`) || strings.ContainsFunc(name, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }) {
		return fmt.Errorf("%q is not a valid command name", name)
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%q is not a valid command name (hidden names are never loaded)", name)
	}
	return nil
}

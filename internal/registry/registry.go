package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/randompixle/Flame/internal/logging"
	"github.com/randompixle/Flame/internal/runtime"
)

// Registry maps command names to loaded units.
type Registry struct {
	runtimes *runtime.Set
	env      *runtime.Env
	core     []CoreCommand
	sources  []Source

	mu    sync.RWMutex
	units map[string]*Unit
}

// New creates an empty registry. Call Refresh to populate it. env is handed
// to units while their top level is evaluated.
func New(rts *runtime.Set, env *runtime.Env, core []CoreCommand, sources ...Source) *Registry {
	return &Registry{
		runtimes: rts,
		env:      env,
		core:     core,
		sources:  sources,
		units:    map[string]*Unit{},
	}
}

// Refresh rebuilds the registry from the core commands and the sources. Every
// unit that fails to load is reported and skipped.
func (r *Registry) Refresh(ctx context.Context) []*LoadError {
	next := make(map[string]*Unit, len(r.core))
	for _, c := range r.core {
		next[c.Name] = &Unit{Name: c.Name, Origin: runtime.OriginCore, Summary: c.Summary, Entry: c.Entry}
	}

	var errs []*LoadError
	for _, src := range r.sources {
		errs = append(errs, r.loadSource(ctx, src, next)...)
	}

	r.mu.Lock()
	r.units = next
	r.mu.Unlock()

	logging.Debug().Int("units", len(next)).Int("errors", len(errs)).Msg("registry refreshed")
	return errs
}

func (r *Registry) loadSource(ctx context.Context, src Source, into map[string]*Unit) []*LoadError {
	entries, err := os.ReadDir(src.Dir)
	if err != nil {
		logging.Debug().Str("source", src.Name).Err(err).Msg("skipping unreadable source")
		return nil
	}

	var errs []*LoadError
	seen := make(map[string]string)
	// ReadDir returns entries sorted by file name.
	for _, e := range entries {
		if e.IsDir() || !r.runtimes.Qualifies(e.Name()) {
			continue
		}
		path := filepath.Join(src.Dir, e.Name())
		name := runtime.UnitName(e.Name())

		if first, dup := seen[name]; dup {
			errs = append(errs, &LoadError{Path: path, Name: name, Err: fmt.Errorf("duplicate of %s", first)})
			continue
		}
		seen[name] = e.Name()

		if existing, ok := into[name]; ok {
			if existing.Origin == runtime.OriginCore {
				errs = append(errs, &LoadError{Path: path, Name: name, Err: fmt.Errorf("%s is a core command", name)})
				continue
			}
			if !src.AllowOverride {
				continue
			}
		}

		unit, err := r.load(ctx, path, src.Origin)
		if err != nil {
			errs = append(errs, &LoadError{Path: path, Name: name, Err: err})
			continue
		}
		into[name] = unit
	}
	return errs
}

func (r *Registry) load(ctx context.Context, path string, origin runtime.Origin) (*Unit, error) {
	rt, ok := r.runtimes.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("no runtime for %s", filepath.Ext(path))
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading unit: %w", err)
	}
	entry, err := rt.Load(ctx, path, src, r.env)
	if err != nil {
		return nil, err
	}
	return &Unit{
		Name:    runtime.UnitName(path),
		Origin:  origin,
		Path:    path,
		Summary: Summary(src),
		Entry:   entry,
	}, nil
}

// Lookup resolves a command name.
func (r *Registry) Lookup(name string) (*Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[name]
	return u, ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Units returns the registered units sorted by name.
func (r *Registry) Units() []*Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	units := make([]*Unit, 0, len(r.units))
	for _, u := range r.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Name < units[j].Name })
	return units
}

// IsReserved reports whether name currently resolves to a core or built-in
// unit, or is provided by a file in a source that cannot be overridden even
// if that file failed to load. The package manager refuses to install over
// such names.
func (r *Registry) IsReserved(name string) bool {
	if u, ok := r.Lookup(name); ok && u.Origin != runtime.OriginInstalled {
		return true
	}
	for _, src := range r.sources {
		if !src.AllowOverride && DirProvides(r.runtimes, src.Dir, name) {
			return true
		}
	}
	return false
}

// DirProvides reports whether dir holds a unit file for name in any of the
// runtimes' extensions. Only directory entries are read.
func DirProvides(rts *runtime.Set, dir, name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	for _, ext := range rts.Exts() {
		file := name + ext
		if !rts.Qualifies(file) {
			continue
		}
		if info, err := os.Stat(filepath.Join(dir, file)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

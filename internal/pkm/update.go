package pkm

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/randompixle/Flame/internal/manifest"
)

// Update replays the recorded install of name, overwriting the installed
// unit. Nothing is touched when name has no usable record.
func (m *Manager) Update(ctx context.Context, name string) error {
	if err := m.update(ctx, name); err != nil {
		return err
	}
	m.requestReload(ReasonPackagesUpdated)
	return nil
}

// UpdateAll updates every recorded name in order. A failing name is reported
// and the rest still run.
func (m *Manager) UpdateAll(ctx context.Context) error {
	man, err := m.store.Load()
	if err != nil {
		return err
	}
	names := man.Names()
	if len(names) == 0 {
		m.printf("no installed packages\n")
		return nil
	}

	failed := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.update(ctx, name); err != nil {
			m.printf("pkm: %v\n", err)
			failed++
		}
	}
	if failed < len(names) {
		m.requestReload(ReasonPackagesUpdated)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d updates failed", failed, len(names))
	}
	return nil
}

func (m *Manager) update(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	man, err := m.store.Load()
	if err != nil {
		return err
	}
	rec, ok := man.Get(name)
	if !ok {
		return notInstalled(name)
	}
	if err := rec.Check(); err != nil {
		return &StateError{Name: name, Problem: fmt.Sprintf("has invalid metadata (%v)", err)}
	}

	var p *placement
	switch rec.Type {
	case manifest.TypeSingle:
		resolved, err := m.resolver.Resolve(rec.Source)
		if err != nil {
			return err
		}
		override := name
		if installed, ok := m.installedPath(name); ok {
			override = filepath.Base(installed)
		}
		p, err = m.installSingle(ctx, rec.Source, resolved, override, true)
		if err != nil {
			return err
		}
	case manifest.TypeZip:
		p, err = m.extractMember(ctx, name, rec)
		if err != nil {
			return err
		}
	}

	if change := describeUpgrade(p.OldVersion, p.NewVersion); change != "" {
		m.printf("updated %s (%s)\n", name, change)
	} else {
		m.printf("updated %s\n", name)
	}
	return nil
}

package pkm

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/randompixle/Flame/internal/fetch"
	"github.com/randompixle/Flame/internal/manifest"
	"github.com/randompixle/Flame/internal/runtime"
)

// openArchive fetches resolved and opens it as a zip archive.
func (m *Manager) openArchive(ctx context.Context, resolved string) (*zip.Reader, error) {
	data, err := m.fetcher.Fetch(ctx, resolved)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &fetch.Error{Kind: fetch.KindDecode, Locator: resolved, Err: err}
	}
	return zr, nil
}

// safeMember reports whether an archive member name stays inside the
// extraction root.
func safeMember(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return false
	}
	for _, elem := range strings.Split(name, "/") {
		if elem == ".." {
			return false
		}
	}
	return true
}

// members returns the archive's unit candidates sorted by path. Unsafe
// paths are reported and left out.
func (m *Manager) members(zr *zip.Reader) []*zip.File {
	var out []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !m.runtimes.Qualifies(path.Base(f.Name)) {
			continue
		}
		if !safeMember(f.Name) {
			m.printf("skipping %s: unsafe path\n", f.Name)
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// readMember returns a member's text, refusing members over the size cap.
func (m *Manager) readMember(f *zip.File) (string, error) {
	if f.UncompressedSize64 > uint64(m.maxMemberBytes) {
		return "", fmt.Errorf("larger than %d bytes", m.maxMemberBytes)
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, m.maxMemberBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > m.maxMemberBytes {
		return "", fmt.Errorf("larger than %d bytes", m.maxMemberBytes)
	}
	return fetch.Text(f.Name, data)
}

// installArchive installs every qualifying member that passes the checks a
// single install would apply. One member's failure never stops the others.
// It returns how many units were installed.
func (m *Manager) installArchive(ctx context.Context, locator, resolved string) (int, error) {
	zr, err := m.openArchive(ctx, resolved)
	if err != nil {
		return 0, err
	}
	members := m.members(zr)
	if len(members) == 0 {
		return 0, errors.New("zip archive contains no command units")
	}

	man, err := m.store.Load()
	if err != nil {
		return 0, err
	}

	installed := 0
	for _, f := range members {
		name := runtime.UnitName(f.Name)
		ext := strings.ToLower(path.Ext(f.Name))
		src, err := m.readMember(f)
		if err != nil {
			m.printf("skipping %s: %v\n", f.Name, err)
			continue
		}
		rt, _ := m.runtimes.ForPath(f.Name)
		if err := rt.Validate(name, []byte(src)); err != nil {
			m.printf("skipping %s: %v\n", f.Name, err)
			continue
		}
		if m.isReserved(name) {
			m.printf("skipping %s: %s\n", name, ReasonReserved)
			continue
		}
		if _, exists := m.installedPath(name); exists {
			m.printf("skipping %s: %s\n", name, ReasonExists)
			continue
		}

		p, err := m.place(name, ext, src)
		if err != nil {
			m.printf("skipping %s: %v\n", f.Name, err)
			continue
		}
		m.installDeps(ctx, src)
		man.Put(name, manifest.Record{Source: locator, Type: manifest.TypeZip, Member: f.Name, Version: p.NewVersion})
		m.printf("installed %s\n", name)
		installed++
	}

	if installed == 0 {
		m.printf("pkm: nothing installed from archive\n")
		return 0, nil
	}
	if err := m.store.Save(man); err != nil {
		return installed, err
	}
	return installed, nil
}

// extractMember re-installs one recorded archive member over name.
func (m *Manager) extractMember(ctx context.Context, name string, rec manifest.Record) (*placement, error) {
	resolved, err := m.resolver.Resolve(rec.Source)
	if err != nil {
		return nil, err
	}
	zr, err := m.openArchive(ctx, resolved)
	if err != nil {
		return nil, err
	}

	var member *zip.File
	for _, f := range zr.File {
		if f.Name == rec.Member {
			member = f
			break
		}
	}
	if member == nil || !safeMember(member.Name) {
		return nil, &StateError{Name: rec.Member, Problem: "not found in archive"}
	}
	ext := strings.ToLower(path.Ext(member.Name))
	rt, ok := m.runtimes.ForPath(member.Name)
	if !ok {
		return nil, &StateError{Name: rec.Member, Problem: "is not a command unit"}
	}

	src, err := m.readMember(member)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", member.Name, err)
	}
	if err := rt.Validate(name, []byte(src)); err != nil {
		return nil, &StateError{Name: name, Problem: err.Error() + " in archive"}
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
	rec.Version = p.NewVersion
	man.Put(name, rec)
	if err := m.store.Save(man); err != nil {
		return nil, err
	}
	return p, nil
}

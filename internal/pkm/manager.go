package pkm

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/randompixle/Flame/internal/branding"
	"github.com/randompixle/Flame/internal/fetch"
	"github.com/randompixle/Flame/internal/manifest"
	"github.com/randompixle/Flame/internal/runtime"
	"github.com/randompixle/Flame/internal/userdata"
)

// DefaultMaxMemberBytes caps a single archive member read into memory.
const DefaultMaxMemberBytes = 16 << 20

// Fetcher retrieves the bytes behind a resolved locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// ReservedChecker reports names owned by core or built-in commands.
type ReservedChecker interface {
	IsReserved(name string) bool
}

// ReservedFunc adapts a function to ReservedChecker.
type ReservedFunc func(name string) bool

func (f ReservedFunc) IsReserved(name string) bool { return f(name) }

// Manager installs, updates and removes units in the extension directory.
type Manager struct {
	layout   userdata.Layout
	fs       afero.Fs
	fetcher  Fetcher
	runtimes *runtime.Set
	reserved ReservedChecker
	deps     DependencyInstaller
	out      io.Writer
	reloader runtime.Reloader
	resolver Resolver
	store    *manifest.Store

	maxMemberBytes int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithFs sets the filesystem holding the extension directory and manifest.
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(m *Manager) { m.fetcher = f }
}

// WithRuntimes sets the runtimes used to validate downloaded sources.
func WithRuntimes(rts *runtime.Set) Option {
	return func(m *Manager) { m.runtimes = rts }
}

// WithReserved sets the check for names owned by core and built-in commands.
func WithReserved(r ReservedChecker) Option {
	return func(m *Manager) { m.reserved = r }
}

// WithDependencyInstaller sets how "#require:" dependencies are installed.
func WithDependencyInstaller(d DependencyInstaller) Option {
	return func(m *Manager) { m.deps = d }
}

// WithOutput sets where progress and result messages are written.
func WithOutput(w io.Writer) Option {
	return func(m *Manager) { m.out = w }
}

// WithReloader sets who is asked to reload after the installed set changes.
func WithReloader(r runtime.Reloader) Option {
	return func(m *Manager) { m.reloader = r }
}

// WithResolver sets the default repository used for bare locators.
func WithResolver(r Resolver) Option {
	return func(m *Manager) { m.resolver = r }
}

// WithMaxMemberBytes caps how much of one archive member is read.
func WithMaxMemberBytes(n int64) Option {
	return func(m *Manager) { m.maxMemberBytes = n }
}

// New returns a Manager for layout.
func New(layout userdata.Layout, opts ...Option) *Manager {
	m := &Manager{
		layout:   layout,
		fs:       afero.NewOsFs(),
		runtimes: runtime.Default(),
		reserved: ReservedFunc(func(string) bool { return false }),
		out:      os.Stdout,
		resolver: Resolver{
			Repo:   branding.GitHubRepo(),
			Branch: branding.DefaultBranch(),
			Folder: branding.CommandsFolder(),
		},
		maxMemberBytes: DefaultMaxMemberBytes,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fetcher == nil {
		m.fetcher = fetch.New(fetch.WithProgress(m.out))
	}
	if m.deps == nil {
		m.deps = &CommandInstaller{Stdout: m.out, Stderr: m.out}
	}
	m.store = &manifest.Store{Fs: m.fs, Path: layout.ManifestPath}
	return m
}

// Store returns the manifest store the manager writes to.
func (m *Manager) Store() *manifest.Store {
	return m.store
}

func (m *Manager) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func (m *Manager) requestReload(reason string) {
	if m.reloader != nil {
		m.reloader.RequestReload(reason)
	}
}

// installedPath returns the extension file providing name, if any. Names
// that are not valid command names never resolve, so no path outside the
// extension directory is ever touched.
func (m *Manager) installedPath(name string) (string, bool) {
	if checkName(name) != nil {
		return "", false
	}
	for _, ext := range m.runtimes.Exts() {
		p := filepath.Join(m.layout.ExtensionDir, name+ext)
		if ok, _ := afero.Exists(m.fs, p); ok {
			return p, true
		}
	}
	return "", false
}

// isReserved reports whether name belongs to a core or built-in command. A
// name whose unit already sits in the extension directory is an install
// conflict, not a reserved one.
func (m *Manager) isReserved(name string) bool {
	if _, ok := m.installedPath(name); ok {
		return false
	}
	return m.reserved.IsReserved(name)
}

// InstalledFiles maps unit names to the qualifying files in the extension
// directory.
func (m *Manager) InstalledFiles() (map[string]string, error) {
	entries, err := afero.ReadDir(m.fs, m.layout.ExtensionDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", m.layout.ExtensionDir, err)
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !m.runtimes.Qualifies(e.Name()) {
			continue
		}
		files[runtime.UnitName(e.Name())] = filepath.Join(m.layout.ExtensionDir, e.Name())
	}
	return files, nil
}

// writeUnit places src at dest through a temporary file and rename, so a
// running shell never observes a partial unit.
func (m *Manager) writeUnit(dest, src string) error {
	if err := m.fs.MkdirAll(filepath.Dir(dest), userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	tmp := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp")
	if err := afero.WriteFile(m.fs, tmp, []byte(src), userdata.FilePermNormal); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := m.fs.Rename(tmp, dest); err != nil {
		_ = m.fs.Remove(tmp)
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// installDeps installs what src declares. Failures are reported but never
// undo the install.
func (m *Manager) installDeps(ctx context.Context, src string) {
	reqs := ParseRequirements(src)
	if len(reqs) == 0 {
		return
	}
	if err := m.deps.Install(ctx, reqs); err != nil {
		m.printf("pkm: requirement install failed: %v\n", err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

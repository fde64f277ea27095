package cli

import (
	"io"
	"net/http"
	"os"

	"github.com/randompixle/Flame/internal/branding"
	"github.com/randompixle/Flame/internal/config"
	"github.com/randompixle/Flame/internal/fetch"
	"github.com/randompixle/Flame/internal/pkm"
	"github.com/randompixle/Flame/internal/registry"
	"github.com/randompixle/Flame/internal/runtime"
	"github.com/randompixle/Flame/internal/shell"
	"github.com/randompixle/Flame/internal/userdata"
)

// prepareLayout resolves the layout and creates it on first use.
func prepareLayout(w io.Writer) (userdata.Layout, error) {
	layout, err := userdata.DefaultLayout()
	if err != nil {
		return layout, err
	}
	if err := userdata.EnsureLayout(w, layout); err != nil {
		return layout, err
	}
	return layout, nil
}

// packageOptions wires the package manager to the loaded settings.
func packageOptions(out io.Writer, settings config.Settings) []pkm.Option {
	fetcher := fetch.New(
		fetch.WithHTTPClient(&http.Client{Timeout: settings.HTTPTimeout}),
		fetch.WithMaxBytes(settings.MaxDownloadBytes),
		fetch.WithUserAgent("flame-pkm/"+buildVersion),
		fetch.WithProgress(out),
	)
	return []pkm.Option{
		pkm.WithFetcher(fetcher),
		pkm.WithOutput(out),
		pkm.WithMaxMemberBytes(settings.MaxDownloadBytes),
		pkm.WithDependencyInstaller(&pkm.CommandInstaller{
			Command: settings.DependencyInstaller,
			Stdout:  out,
			Stderr:  os.Stderr,
		}),
		pkm.WithResolver(pkm.Resolver{
			Repo:   settings.DefaultRepo,
			Branch: settings.DefaultBranch,
			Folder: branding.CommandsFolder(),
		}),
	}
}

// newShell builds a shell over the default layout using the loaded settings.
func newShell(extra ...shell.Option) (*shell.Shell, error) {
	layout, err := prepareLayout(io.Discard)
	if err != nil {
		return nil, err
	}
	settings := config.Current()
	opts := []shell.Option{
		shell.WithColor(settings.PromptColor),
		shell.WithPackageOptions(packageOptions(os.Stdout, settings)...),
	}
	return shell.New(layout, append(opts, extra...)...), nil
}

// reservedNames reports core commands and names provided by files in the
// built-in directory. It reads directory entries only, so no unit code runs.
func reservedNames(layout userdata.Layout, rts *runtime.Set) pkm.ReservedFunc {
	return func(name string) bool {
		for _, core := range shell.CoreNames() {
			if core == name {
				return true
			}
		}
		return registry.DirProvides(rts, layout.BuiltinDir, name)
	}
}

// noticeReloader reports reload requests made outside the shell.
type noticeReloader struct {
	w io.Writer
}

func (n noticeReloader) RequestReload(reason string) {
	if reason == "" {
		reason = shell.DefaultReloadReason
	}
	io.WriteString(n.w, "[flame] "+reason+"; running shells pick this up on 'reload'\n")
}

// newManager builds a package manager for use outside the shell.
func newManager(out io.Writer) (*pkm.Manager, error) {
	layout, err := prepareLayout(io.Discard)
	if err != nil {
		return nil, err
	}
	rts := runtime.Default()
	opts := append(packageOptions(out, config.Current()),
		pkm.WithRuntimes(rts),
		pkm.WithReserved(reservedNames(layout, rts)),
		pkm.WithReloader(noticeReloader{w: out}),
	)
	return pkm.New(layout, opts...), nil
}

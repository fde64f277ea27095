package pkm

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/randompixle/Flame/internal/logging"
)

// DeclaredVersion returns the normalized semantic version from the first
// valid "#version:" line in src, or "" when none is declared.
func DeclaredVersion(src string) string {
	for _, value := range declarations(src, "version") {
		raw := strings.TrimSpace(value)
		v, err := semver.NewVersion(raw)
		if err != nil {
			logging.Debug().Str("version", raw).Err(err).Msg("ignoring invalid unit version")
			continue
		}
		return v.String()
	}
	return ""
}

// describeUpgrade formats the version change of an update, or "" when either
// side is unversioned.
func describeUpgrade(oldV, newV string) string {
	if oldV == "" || newV == "" {
		return ""
	}
	o, err1 := semver.NewVersion(oldV)
	n, err2 := semver.NewVersion(newV)
	if err1 != nil || err2 != nil {
		return ""
	}
	switch n.Compare(o) {
	case 0:
		return oldV + ", unchanged"
	case -1:
		return oldV + " -> " + newV + ", downgrade"
	default:
		return oldV + " -> " + newV
	}
}

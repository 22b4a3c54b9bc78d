package version

import (
	"runtime/debug"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/yaklabco/solo/pkg/ui"
)

// Version is the CLI version. It can be overridden at build time via:
//
//	-ldflags "-X github.com/yaklabco/solo/cmd/solo/version.Version=v0.0.0"
var Version = "dev" //nolint:gochecknoglobals // Populated by goreleaser ldflags.

// Commit is the git commit hash, overridable the same way as Version.
var Commit = "" //nolint:gochecknoglobals // Populated by goreleaser ldflags.

// EffectiveVersion returns the best-effort version string for the binary.
// Precedence:
//  1. Version from ldflags, unless it is "dev" or empty.
//  2. Go build info `Main.Version` (set by `go install module@version`).
//  3. Go build info `vcs.revision`, with "-dirty" if `vcs.modified=true`.
//  4. "dev".
func EffectiveVersion() string {
	v := strings.TrimSpace(Version)
	if v != "" && v != "dev" {
		return v
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return "dev"
	}
	if mv := strings.TrimSpace(bi.Main.Version); mv != "" && mv != "(devel)" {
		return mv
	}

	var rev, dirty string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if rev != "" {
		return rev + dirty
	}

	return "dev"
}

// EffectiveCommit returns Commit if set, otherwise the build info revision.
func EffectiveCommit() string {
	if c := strings.TrimSpace(Commit); c != "" {
		return c
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return ""
}

// String renders the version line, colorized with fang's palette when color is true.
func String(color bool) string {
	versionStyle := lipgloss.NewStyle()
	commitStyle := lipgloss.NewStyle()
	sepStyle := lipgloss.NewStyle()
	if color {
		cs := ui.GetFangScheme()
		versionStyle = versionStyle.Foreground(cs.QuotedString)
		commitStyle = commitStyle.Foreground(cs.Program)
		sepStyle = sepStyle.Foreground(cs.Base)
	}

	parts := []string{versionStyle.Render(EffectiveVersion())}
	if c := EffectiveCommit(); c != "" {
		parts = append(parts, commitStyle.Render(c))
	}

	return strings.Join(parts, sepStyle.Render("-"))
}

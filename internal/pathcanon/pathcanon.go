// Package pathcanon decides whether an observed path falls under a
// monitored home-directory subtree and, if so, truncates it to the
// configured tracking depth.
package pathcanon

import (
	"path/filepath"
	"strings"

	"github.com/hdas-project/hdas/config"
)

// umbrellaDirs are well-known roots under which "per-application"
// directories live one level deeper than a typical monitored dir; the
// effective depth for these is the configured depth plus one.
var umbrellaDirs = map[string]bool{
	".local/share": true,
	".local/state": true,
	".local/lib":   true,
}

// Canonicalise implements the path canonicalisation rules: absolutise
// filename against home, find the first matching monitored dir (in
// configured order), and truncate the remainder to that dir's depth.
// Returns (canonicalPath, true) on a match, ("", false) if no monitored
// dir covers the path.
func Canonicalise(filename, home string, dirs []config.MonitoredDir, defaultDepth int) (string, bool) {
	abs := absolutise(filename, home)

	for _, dir := range dirs {
		if strings.HasPrefix(dir.Path, "/") {
			if canonical, ok := matchAbsoluteDir(abs, dir, defaultDepth); ok {
				return canonical, true
			}
			continue
		}

		if canonical, ok := matchHomeRelativeDir(abs, home, dir, defaultDepth); ok {
			return canonical, true
		}
	}

	return "", false
}

func absolutise(filename, home string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	return filepath.Join(home, filename)
}

func effectiveDepth(dirPath string, dir config.MonitoredDir, defaultDepth int) int {
	depth := defaultDepth
	if dir.Depth != nil {
		depth = *dir.Depth
	}

	if umbrellaDirs[dirPath] {
		depth++
	}

	return depth
}

// matchHomeRelativeDir handles monitored dirs given relative to home, e.g.
// ".cache" or ".local/share". The leading dots in dir.Path are a naming
// convention, not part of the path comparison: dir.Path is compared
// against the trimmed leading dot of the path segment under home.
func matchHomeRelativeDir(abs, home string, dir config.MonitoredDir, defaultDepth int) (string, bool) {
	rel := strings.TrimPrefix(abs, home)
	rel = strings.TrimPrefix(rel, "/")

	name := strings.TrimPrefix(dir.Path, ".")
	prefix := "." + name + "/"

	if rel != "."+name && !strings.HasPrefix(rel, prefix) {
		return "", false
	}

	depth := effectiveDepth(dir.Path, dir, defaultDepth)
	if depth == 0 {
		return abs, true
	}

	suffix := strings.TrimPrefix(rel, prefix)
	if suffix == rel {
		// rel equals "."+name exactly, with no further components.
		return filepath.Join(home, "."+name), true
	}

	parts := strings.Split(suffix, "/")
	if depth < len(parts) {
		parts = parts[:depth]
	}

	if len(parts) == 0 {
		return filepath.Join(home, "."+name), true
	}

	return filepath.Join(home, "."+name, filepath.Join(parts...)), true
}

// matchAbsoluteDir handles monitored dirs given as absolute paths, e.g. "/etc".
func matchAbsoluteDir(abs string, dir config.MonitoredDir, defaultDepth int) (string, bool) {
	base := strings.TrimSuffix(dir.Path, "/")

	if abs != base && !strings.HasPrefix(abs, base+"/") {
		return "", false
	}

	depth := effectiveDepth(dir.Path, dir, defaultDepth)
	if depth == 0 {
		return abs, true
	}

	suffix := strings.TrimPrefix(abs, base+"/")
	if suffix == abs {
		return base, true
	}

	parts := strings.Split(suffix, "/")
	if depth < len(parts) {
		parts = parts[:depth]
	}

	if len(parts) == 0 {
		return base, true
	}

	return filepath.Join(base, filepath.Join(parts...)), true
}

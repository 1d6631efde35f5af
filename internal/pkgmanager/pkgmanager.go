// Package pkgmanager detects the host's distribution package manager and
// answers two questions: which installed package owns a given path, and
// what is currently installed. It never fails loudly — a missing binary
// or an unparseable answer resolves to "unknown" at the caller.
package pkgmanager

import "context"

// Manager is the contract every supported distribution package manager
// implements. A generalization of the teacher's per-ecosystem
// PackageManager interface (Name/ParseCommand/Ecosystem) from language
// package managers to system package managers.
type Manager interface {
	// Name is the variant's short identifier, e.g. "pacman".
	Name() string

	// QueryOwner answers "which installed package owns this path?".
	// Returns ("", false) if the path is unowned or the lookup fails.
	QueryOwner(ctx context.Context, path string) (string, bool)

	// ListInstalled returns the set of currently installed package names.
	ListInstalled(ctx context.Context) ([]string, error)

	// ManagerPackageNames returns the package name(s) corresponding to the
	// manager binary itself, used by the is_self_package predicate.
	ManagerPackageNames() []string
}

// lookPath is overridable in tests to avoid depending on the host's
// actual installed package managers.
var lookPath = defaultLookPath

// detectors is the fixed detection order: Pacman -> Dpkg -> Rpm -> Xbps -> Apk.
var detectors = []struct {
	binary string
	build  func() Manager
}{
	{"pacman", func() Manager { return newPacman() }},
	{"dpkg", func() Manager { return newDpkg() }},
	{"rpm", func() Manager { return newRpm() }},
	{"xbps-query", func() Manager { return newXbps() }},
	{"apk", func() Manager { return newApk() }},
}

// Detect probes PATH in the fixed order and returns the first package
// manager found. Returns (nil, false) if none are present; callers must
// treat that as "all packages resolve to unknown".
func Detect() (Manager, bool) {
	for _, d := range detectors {
		if lookPath(d.binary) {
			return d.build(), true
		}
	}
	return nil, false
}

// IsSelfPackage reports whether pkg is one of mgr's own package names.
func IsSelfPackage(mgr Manager, pkg string) bool {
	if mgr == nil {
		return false
	}
	for _, name := range mgr.ManagerPackageNames() {
		if name == pkg {
			return true
		}
	}
	return false
}

package pkgmanager

import (
	"context"
	"strings"
)

type dpkg struct{}

func newDpkg() *dpkg { return &dpkg{} }

var _ Manager = (*dpkg)(nil)

func (d *dpkg) Name() string { return "dpkg" }

func (d *dpkg) QueryOwner(ctx context.Context, path string) (string, bool) {
	out, err := runCommand(ctx, "dpkg", "-S", path)
	if err != nil {
		return "", false
	}
	return parseDpkgOwner(out)
}

func (d *dpkg) ListInstalled(ctx context.Context) ([]string, error) {
	out, err := runCommand(ctx, "dpkg-query", "-W", "-f", "${Package}\n")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

func (d *dpkg) ManagerPackageNames() []string {
	return []string{"dpkg"}
}

// parseDpkgOwner extracts the package name from `dpkg -S <path>` stdout's
// first line, e.g. "firefox: /usr/bin/firefox" -> "firefox". A line without
// a ": /" path separator (such as a dpkg-query error message) yields ("", false).
func parseDpkgOwner(out string) (string, bool) {
	lines := strings.SplitN(out, "\n", 2)
	if len(lines) == 0 || lines[0] == "" || !strings.Contains(lines[0], ": /") {
		return "", false
	}

	idx := strings.Index(lines[0], ":")
	if idx < 0 {
		return "", false
	}

	pkg := strings.TrimSpace(lines[0][:idx])
	if pkg == "" {
		return "", false
	}

	return pkg, true
}

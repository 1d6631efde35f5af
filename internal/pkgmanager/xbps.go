package pkgmanager

import (
	"context"
	"strings"
)

type xbps struct{}

func newXbps() *xbps { return &xbps{} }

var _ Manager = (*xbps)(nil)

func (x *xbps) Name() string { return "xbps" }

func (x *xbps) QueryOwner(ctx context.Context, path string) (string, bool) {
	out, err := runCommand(ctx, "xbps-query", "-o", path)
	if err != nil {
		return "", false
	}
	return parseXbpsOwner(out)
}

func (x *xbps) ListInstalled(ctx context.Context) ([]string, error) {
	out, err := runCommand(ctx, "xbps-query", "-l")
	if err != nil {
		return nil, err
	}
	return parseXbpsList(out), nil
}

func (x *xbps) ManagerPackageNames() []string {
	return []string{"xbps"}
}

// parseXbpsOwner extracts the package name from `xbps-query -o <path>`
// stdout, e.g. "firefox-128.0_1: /usr/bin/firefox" -> "firefox".
func parseXbpsOwner(out string) (string, bool) {
	line := strings.SplitN(out, "\n", 2)[0]
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", false
	}

	pkg := strings.TrimSpace(line[:idx])
	if pkg == "" {
		return "", false
	}

	return stripVersionSuffix(pkg), true
}

// parseXbpsList extracts package names from `xbps-query -l` stdout, where
// each line is "ii firefox-128.0_1 Mozilla Firefox web browser".
func parseXbpsList(out string) []string {
	var names []string
	for _, line := range splitNonEmptyLines(out) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		names = append(names, stripVersionSuffix(fields[1]))
	}
	return names
}

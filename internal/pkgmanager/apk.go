package pkgmanager

import (
	"context"
	"strings"
)

type apk struct{}

func newApk() *apk { return &apk{} }

var _ Manager = (*apk)(nil)

func (a *apk) Name() string { return "apk" }

func (a *apk) QueryOwner(ctx context.Context, path string) (string, bool) {
	out, err := runCommand(ctx, "apk", "info", "--who-owns", path)
	if err != nil {
		return "", false
	}
	return parseApkOwner(out)
}

func (a *apk) ListInstalled(ctx context.Context) ([]string, error) {
	out, err := runCommand(ctx, "apk", "list", "--installed", "-q")
	if err != nil {
		return nil, err
	}
	return parseApkList(out), nil
}

func (a *apk) ManagerPackageNames() []string {
	return []string{"apk", "apk-tools"}
}

// parseApkOwner extracts the package name from `apk info --who-owns <path>`
// stdout, e.g. "/usr/bin/firefox is owned by firefox-128.0-r1".
func parseApkOwner(out string) (string, bool) {
	const marker = "is owned by "
	idx := strings.Index(out, marker)
	if idx < 0 {
		return "", false
	}

	pkg := strings.TrimSpace(out[idx+len(marker):])
	pkg = strings.SplitN(pkg, "\n", 2)[0]
	if pkg == "" {
		return "", false
	}

	return stripVersionSuffix(pkg), true
}

func parseApkList(out string) []string {
	var names []string
	for _, line := range splitNonEmptyLines(out) {
		names = append(names, stripVersionSuffix(line))
	}
	return names
}

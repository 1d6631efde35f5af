package pkgmanager

import (
	"context"
	"strings"
)

type pacman struct{}

func newPacman() *pacman { return &pacman{} }

var _ Manager = (*pacman)(nil)

func (p *pacman) Name() string { return "pacman" }

func (p *pacman) QueryOwner(ctx context.Context, path string) (string, bool) {
	out, err := runCommand(ctx, "pacman", "-Qo", path)
	if err != nil {
		return "", false
	}
	return parsePacmanOwner(out)
}

func (p *pacman) ListInstalled(ctx context.Context) ([]string, error) {
	out, err := runCommand(ctx, "pacman", "-Qq")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

func (p *pacman) ManagerPackageNames() []string {
	return []string{"pacman"}
}

// parsePacmanOwner extracts the package name from `pacman -Qo <path>` stdout,
// e.g. "/usr/bin/firefox is owned by firefox 128.0-1" -> "firefox" (5th token).
// Output that does not read "<path> is owned by <pkg>" yields ("", false).
func parsePacmanOwner(out string) (string, bool) {
	fields := strings.Fields(out)
	if len(fields) < 5 || fields[1] != "is" || fields[2] != "owned" || fields[3] != "by" {
		return "", false
	}
	return fields[4], true
}

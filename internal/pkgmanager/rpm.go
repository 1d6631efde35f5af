package pkgmanager

import (
	"context"
	"strings"
)

type rpm struct{}

func newRpm() *rpm { return &rpm{} }

var _ Manager = (*rpm)(nil)

func (r *rpm) Name() string { return "rpm" }

func (r *rpm) QueryOwner(ctx context.Context, path string) (string, bool) {
	out, err := runCommand(ctx, "rpm", "-qf", "--qf", "%{NAME}", path)
	if err != nil {
		return "", false
	}
	return parseRpmOwner(out)
}

func (r *rpm) ListInstalled(ctx context.Context) ([]string, error) {
	out, err := runCommand(ctx, "rpm", "-qa", "--qf", "%{NAME}\n")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

func (r *rpm) ManagerPackageNames() []string {
	return []string{"rpm"}
}

func parseRpmOwner(out string) (string, bool) {
	out = strings.TrimSpace(out)
	if out == "" || strings.Contains(out, "not owned") {
		return "", false
	}
	return out, true
}

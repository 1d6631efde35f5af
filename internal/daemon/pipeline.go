// Package daemon wires together the kernel probe, event reader, path
// canonicaliser, ancestry resolver, package-manager adapter, and
// attribution store into the single-threaded event-processing loop
// that `hdas monitor` runs. It is the only package that calls all of
// 4.A-4.F in sequence; every other command touches the store directly
// through its read-only or mutating interface.
//
// Grounded on the teacher's top-level command-loop style: structured
// logging via github.com/safedep/dry/log rather than fmt.Println for
// anything beyond the explicit human-facing report (internal/ui), and
// signal.NotifyContext-driven cancellation, which in the retrieved
// pack is used verbatim for exactly this kind of poll loop by
// ja7ad-consumption/cmd/consumption/main.go.
package daemon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/safedep/dry/log"

	"github.com/hdas-project/hdas/config"
	"github.com/hdas-project/hdas/internal/ancestry"
	"github.com/hdas-project/hdas/internal/eventreader"
	"github.com/hdas-project/hdas/internal/pathcanon"
	"github.com/hdas-project/hdas/internal/pkgmanager"
	"github.com/hdas-project/hdas/internal/store"
	"github.com/hdas-project/hdas/internal/ui"
)

// Now is overridable in tests so record timestamps are deterministic.
var Now = time.Now

// Pipeline owns every component of the attribution pipeline and
// drains events from an eventreader.Reader until its context is
// cancelled.
type Pipeline struct {
	cfg    config.Config
	home   string
	store  *store.Store
	mgr    pkgmanager.Manager
	report *ui.ReportData
}

// New builds a Pipeline. mgr may be nil, meaning no package manager
// was detected on this host; every lookup then resolves to unknown.
func New(cfg config.Config, home string, st *store.Store, mgr pkgmanager.Manager) *Pipeline {
	return &Pipeline{cfg: cfg, home: home, store: st, mgr: mgr, report: ui.NewReportData()}
}

// Report returns the running session statistics. Safe to call after
// Run returns.
func (p *Pipeline) Report() *ui.ReportData {
	return p.report
}

// Run drains events off reader until ctx is cancelled, processing
// each one through §4.G's seven-step algorithm.
func (p *Pipeline) Run(ctx context.Context, reader *eventreader.Reader) {
	events := reader.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			p.process(ctx, event)
		}
	}
}

// process implements spec.md §4.G steps 1-7 for a single decoded
// event.
func (p *Pipeline) process(ctx context.Context, event eventreader.RawEvent) {
	p.report.EventsObserved++

	// Step 1: cheap early reject before any canonicalisation or
	// ancestry-walk cost is paid.
	if !p.mightBeMonitored(event.Filename) {
		p.report.Dropped++
		return
	}

	// Step 2: canonicalise, or drop.
	canonical, ok := pathcanon.Canonicalise(event.Filename, p.home, p.cfg.MonitoredDirs, p.cfg.TrackingDepth)
	if !ok {
		p.report.Dropped++
		return
	}

	// Step 3: short-circuit. Once a canonical path has a known (non-
	// unknown) creator, further ancestry resolution adds nothing
	// worth its ppid-walk cost, so skip straight to a touch using the
	// immediate process's own comm. A path with no record yet, or one
	// still pinned to the unknown sentinel, still needs the full walk
	// so that unknown-promotion (S4) can happen.
	hasKnownCreator, err := p.store.PathHasKnownCreator(ctx, canonical)
	if err != nil {
		log.Warnf("hdas: store lookup failed for %s: %v", canonical, err)
		p.report.Dropped++
		return
	}

	if hasKnownCreator {
		if err := p.store.RecordAccess(ctx, canonical, store.UnknownPackage, event.Comm, Now(), true); err != nil {
			log.Warnf("hdas: failed to record touch for %s: %v", canonical, err)
			return
		}
		p.report.Touched++
		log.Infof("~ %s (%s)", canonical, event.Comm)
		return
	}

	// Step 4: resolve (package, process, via_parent).
	pid := int(event.PID)
	result := ancestry.Resolve(p.mgr, pid, event.Comm)

	// Step 5: ignored-packages filter.
	if containsFold(p.cfg.IgnoredPackages, result.Package) {
		p.report.Dropped++
		return
	}

	// Step 6: commit.
	ignoredProc := containsFold(p.cfg.IgnoredProcesses, result.Process)
	if err := p.store.RecordAccess(ctx, canonical, result.Package, result.Process, Now(), ignoredProc); err != nil {
		log.Warnf("hdas: failed to record access for %s: %v", canonical, err)
		return
	}

	// Step 7: emit the human-readable line.
	switch {
	case ignoredProc:
		p.report.Touched++
		log.Infof("~ %s (%s, ignored)", canonical, result.Process)
	case result.ViaParent:
		p.report.Resolved++
		log.Infof("^ %s (%s via ancestor)", canonical, result.Package)
	default:
		p.report.Created++
		log.Infof("+ %s (%s)", canonical, result.Package)
	}
}

// mightBeMonitored is the cheap substring pre-filter referenced by
// step 1: true unless the event's filename plainly falls outside
// every monitored dir's name, sparing a ppid walk on irrelevant
// syscalls.
func (p *Pipeline) mightBeMonitored(filename string) bool {
	for _, dir := range p.cfg.MonitoredDirs {
		name := strings.TrimPrefix(dir.Path, ".")
		name = strings.TrimPrefix(name, "/")
		if name == "" || strings.Contains(filename, name) {
			return true
		}
	}
	return false
}

func containsFold(set []string, value string) bool {
	for _, s := range set {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

// DetectManager probes PATH for an installed package manager, logging
// (not failing) when none is found: hdas still runs, every package
// just resolves to store.UnknownPackage.
func DetectManager() pkgmanager.Manager {
	mgr, ok := pkgmanager.Detect()
	if !ok {
		log.Warnf("hdas: no supported package manager found in PATH; all attributions will be %q", store.UnknownPackage)
		return nil
	}
	log.Infof("hdas: detected package manager %s", mgr.Name())
	return mgr
}

// RequireRoot returns an error if the process does not run with
// effective uid 0, which the kernel probe requires to load.
func RequireRoot(euid int) error {
	if euid != 0 {
		return fmt.Errorf("hdas monitor must run as root (effective uid 0), got uid %d", euid)
	}
	return nil
}

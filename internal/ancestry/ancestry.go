// Package ancestry walks a process's parent chain to find the nearest
// ancestor whose executable is owned by an installed package, so that
// a file access performed through a transient helper (a shell, an
// editor) is still attributed to the application that spawned it.
//
// Grounded on the /proc-reading conventions of ja7ad/consumption's
// pkg/system/proc package: small, single-purpose readers that treat any
// I/O failure as "no more data" rather than propagating an error.
package ancestry

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hdas-project/hdas/internal/pkgmanager"
)

// MaxDepth bounds the ancestor walk so a detached or mis-parented process
// tree can never spin the resolver forever.
const MaxDepth = 10

// UnknownPackage is the sentinel creator package used when no ancestor
// within the walk budget is owned by a known package.
const UnknownPackage = "unknown"

// Result is the outcome of resolving a pid to its attributing package.
type Result struct {
	Package   string
	Process   string
	ViaParent bool
}

func unknown(comm string) Result {
	return Result{Package: UnknownPackage, Process: comm, ViaParent: false}
}

// procRoot is overridable in tests to point the resolver at a synthetic
// /proc-like directory tree instead of the real kernel-provided one.
var procRoot = "/proc"

// Resolve maps a pid to the nearest ancestor whose executable is owned
// by an installed package. It never fails: any I/O error during the walk
// is treated as "no more ancestors" and yields the unknown sentinel.
func Resolve(mgr pkgmanager.Manager, pid int, comm string) Result {
	cache := map[int]Result{}

	if exe, ok := readExe(pid); ok {
		if pkg, ok := queryOwner(mgr, exe); ok {
			return Result{Package: pkg, Process: comm, ViaParent: false}
		}
	}

	current := pid
	for depth := 0; depth < MaxDepth; depth++ {
		if cached, ok := cache[current]; ok {
			return cached
		}

		ppid, ok := readPPID(current)
		if !ok || ppid <= 1 {
			return unknown(comm)
		}

		exe, exeOK := readExe(ppid)
		if exeOK {
			if pkg, ok := queryOwner(mgr, exe); ok {
				ancestorComm := readComm(ppid)
				if ancestorComm == "" {
					ancestorComm = comm
				}

				result := Result{Package: pkg, Process: ancestorComm, ViaParent: true}
				cache[current] = result
				return result
			}
		}

		current = ppid
	}

	return unknown(comm)
}

func queryOwner(mgr pkgmanager.Manager, exe string) (string, bool) {
	if mgr == nil {
		return "", false
	}
	return mgr.QueryOwner(context.Background(), exe)
}

// readExe resolves /proc/<pid>/exe, stripping a trailing " (deleted)"
// marker left when the backing binary was removed while still mapped.
func readExe(pid int) (string, bool) {
	path, err := os.Readlink(fmt.Sprintf("%s/%d/exe", procRoot, pid))
	if err != nil {
		return "", false
	}

	path = strings.TrimSuffix(path, " (deleted)")
	if path == "" {
		return "", false
	}

	return path, true
}

// readComm reads /proc/<pid>/comm, the kernel-maintained short process name.
func readComm(pid int) string {
	data, err := os.ReadFile(fmt.Sprintf("%s/%d/comm", procRoot, pid))
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(data), "\n")
}

// readPPID parses /proc/<pid>/stat for the parent pid. The comm field (2nd
// field) may itself contain spaces and parentheses, so the parser finds the
// last ')' in the line and whitespace-splits everything after it; ppid is
// then the second field in that remainder.
func readPPID(pid int) (int, bool) {
	f, err := os.Open(fmt.Sprintf("%s/%d/stat", procRoot, pid))
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, false
	}
	line := scanner.Text()

	i := strings.LastIndex(line, ")")
	if i < 0 || i+1 >= len(line) {
		return 0, false
	}

	fields := strings.Fields(line[i+1:])
	if len(fields) < 2 {
		return 0, false
	}

	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}

	return ppid, true
}

package store

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// LockExclusive takes a non-blocking advisory flock on the store file,
// per spec.md §5 ("the store's underlying file is opened exclusively
// by the daemon for writes; ... the operating system's file lock on
// the store file arbitrates"). Only the monitor daemon takes this
// lock; query and cleanup commands open the store without it and rely
// on their own short-lived transactions. Returns an unlock function
// that also closes the held file descriptor.
func LockExclusive(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file for locking: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("store is locked by another hdas monitor process: %w", err)
	}

	return func() error {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		return f.Close()
	}, nil
}

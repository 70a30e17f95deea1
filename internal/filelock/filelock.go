// Package filelock provides advisory file locking so that several focusboard
// processes sharing one data directory do not interleave writes.
package filelock

import (
	"fmt"
	"os"
)

const lockFileMode = 0o600

// Lock acquires an exclusive advisory lock on the file at path, creating it
// if needed. The returned function releases the lock.
//
// Other callers block until the lock is released.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock path inside the data dir
	if err != nil {
		return nil, err
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}

// With runs fn while holding the lock at path.
func With(path string, fn func() error) error {
	unlock, err := Lock(path)
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock

	return fn()
}

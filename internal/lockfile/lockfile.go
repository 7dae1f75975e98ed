// Package lockfile guards against two app instances arming and ringing the
// same alarm. The holder writes its pid and executable name to a lockfile;
// a second instance refuses to start while the first is still alive, and a
// stale lockfile left by a crash is reclaimed.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
	executableFunc  = os.Executable
)

// ErrHeld is returned by Acquire when another live instance holds the lock.
var ErrHeld = errors.New("another instance is already running")

// Lock is an acquired instance lock. Release it on shutdown.
type Lock struct {
	path string
}

// Acquire takes the instance lock at path, reclaiming it if the recorded
// process is gone or is no longer this executable.
func Acquire(path string) (*Lock, error) {
	if pid, ok := liveHolder(path); ok {
		return nil, fmt.Errorf("%w (pid %d)", ErrHeld, pid)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lockfile dir: %w", err)
	}

	exe, err := executableFunc()
	if err != nil {
		exe = "unknown"
	}
	content := fmt.Sprintf("%d|%s", getpidFunc(), filepath.Base(exe))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}

	return &Lock{path: path}, nil
}

// Release removes the lockfile. Releasing twice is a no-op.
func (l *Lock) Release() error {
	if l.path == "" {
		return nil
	}
	path := l.path
	l.path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Status of an instance lockfile, as reported by Inspect.
type Status int

const (
	StatusAbsent Status = iota
	StatusHeld
	StatusStale
)

// Inspect reports the state of the lockfile at path without acquiring it:
// absent, held by a live process (with the holder's pid), or stale. Stale
// lockfiles are reclaimed by the next Acquire; diagnostics surface them so
// a crash leftover is explainable.
func Inspect(path string) (Status, int) {
	if _, err := os.Stat(path); err != nil {
		return StatusAbsent, 0
	}
	if pid, ok := liveHolder(path); ok {
		return StatusHeld, pid
	}
	return StatusStale, 0
}

// liveHolder reports whether the lockfile at path names a process that is
// still running this executable. Unreadable or malformed lockfiles are
// treated as stale.
func liveHolder(path string) (int, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return 0, false
	}

	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid < 1 {
		return 0, false
	}
	exe := strings.TrimSpace(parts[1])
	if exe == "" {
		return 0, false
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return 0, false
	}
	if !strings.HasPrefix(process.Executable(), exe) {
		return 0, false
	}

	return pid, true
}

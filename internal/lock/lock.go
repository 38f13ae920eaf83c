// Package lock keeps a single posy process writing to a store at a time.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/logger"
)

// ErrLocked means another live posy process holds the lock.
var ErrLocked = errors.New("another posy process is using this store")

var (
	findProcessFunc = ps.FindProcess
	getpid          = os.Getpid
)

// Holder describes the process recorded in a lockfile.
type Holder struct {
	PID   int
	Since time.Time
}

// Lock is a held lockfile.
type Lock struct {
	path string
	pid  int
}

// Acquire creates dir/posy.lock for this process. A lockfile left by a
// process that is gone, or that is not posy, is replaced.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := filepath.Join(dir, constants.LockfileName)
	pid := getpid()

	for attempt := 0; attempt < 2; attempt++ {
		err := create(path, pid)
		if err == nil {
			return &Lock{path: path, pid: pid}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		holder, err := Inspect(path)
		if err == nil && holder.PID == pid {
			return &Lock{path: path, pid: pid}, nil
		}
		if err == nil && alive(holder.PID) {
			return nil, fmt.Errorf("%w (pid %d since %s)", ErrLocked, holder.PID, holder.Since.Format(time.Kitchen))
		}
		logger.Warn("Removing stale lockfile", "path", path, "error", err)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, ErrLocked
}

func create(path string, pid int) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	_, werr := fmt.Fprintf(f, "%d|%s", pid, time.Now().UTC().Format(time.RFC3339))
	cerr := f.Close()
	if werr != nil {
		os.Remove(path)
		return werr
	}
	return cerr
}

// Inspect parses a lockfile written by Acquire.
func Inspect(path string) (Holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Holder{}, err
	}
	pidStr, since, ok := strings.Cut(strings.TrimSpace(string(content)), "|")
	if !ok {
		return Holder{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Holder{}, errors.New("invalid process ID in lockfile")
	}
	ts, err := time.Parse(time.RFC3339, since)
	if err != nil {
		return Holder{}, errors.New("invalid timestamp in lockfile")
	}
	return Holder{PID: pid, Since: ts}, nil
}

// alive reports whether pid is a running posy process.
func alive(pid int) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(filepath.Base(process.Executable()), constants.AppName)
}

// Release removes the lockfile if it still belongs to this process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	holder, err := Inspect(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if holder.PID != l.pid {
		return nil
	}
	return os.Remove(l.path)
}

func (l *Lock) Path() string { return l.path }

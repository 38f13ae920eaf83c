// Package backup writes and restores JSON snapshots of every blob in a
// storage.Provider.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/logger"
	"github.com/julianstephens/posy/internal/storage"
)

const (
	timestampLayout = "20060102-150405"
	snapshotVersion = 1
)

var ErrInvalidSnapshot = errors.New("not a posy snapshot")

// now is swapped in tests so rotation order is deterministic.
var now = time.Now

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
	Reason    string
}

type snapshot struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Reason    string            `json:"reason,omitempty"`
	Blobs     map[string]string `json:"blobs"`
}

// Manager handles backup operations
type Manager struct {
	store     storage.Provider
	backupDir string
	keep      int
}

// NewManager creates a manager writing into dir.
func NewManager(store storage.Provider, dir string) *Manager {
	return &Manager{store: store, backupDir: dir, keep: constants.MaxBackups}
}

// DefaultDir is the backup directory inside a config directory.
func DefaultDir(configDir string) string {
	return filepath.Join(configDir, constants.BackupDirName)
}

func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// Snapshot reasons with their own retention. Any other reason is a safety
// snapshot taken before data is overwritten, deleted or restored.
const (
	ReasonManual    = "manual"
	ReasonAutomatic = "automatic"
)

const safetyPool = "safety"

// pool names the group a snapshot rotates with. Manual backups, and files
// whose reason cannot be read, belong to none and are never rotated.
func pool(reason string) string {
	switch reason {
	case ReasonManual, "":
		return ""
	case ReasonAutomatic:
		return ReasonAutomatic
	}
	return safetyPool
}

// CreateBackup snapshots every blob. Manual backups are kept until removed.
func (m *Manager) CreateBackup() (string, error) {
	return m.create(ReasonManual, false)
}

// Snapshot is CreateBackup with a recorded reason. The Entry Store calls it
// before it discards an entry. Only snapshots sharing the reason's pool are
// rotated.
func (m *Manager) Snapshot(reason string) (string, error) {
	return m.create(reason, false)
}

func (m *Manager) create(reason string, skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	keys, err := m.store.Keys()
	if err != nil {
		return "", fmt.Errorf("failed to list blobs: %w", err)
	}
	snap := snapshot{
		Version:   snapshotVersion,
		CreatedAt: now().UTC(),
		Reason:    reason,
		Blobs:     make(map[string]string, len(keys)),
	}
	for _, key := range keys {
		value, ok, err := m.store.Get(key)
		if err != nil {
			return "", fmt.Errorf("failed to read blob %q: %w", key, err)
		}
		if ok {
			snap.Blobs[key] = value
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path, f, err := m.openUnique(snap.CreatedAt.Local())
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	logger.Debug("Backup created", "path", path, "reason", reason, "blobs", len(snap.Blobs))

	if p := pool(reason); p != "" && !skipRotation {
		if err := m.rotateBackups(p); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return path, nil
}

// openUnique creates posy-<ts>.json, or posy-<ts>.<n>.json when several
// snapshots land in the same second.
func (m *Manager) openUnique(ts time.Time) (string, *os.File, error) {
	stamp := ts.Format(timestampLayout)
	for n := 0; n <= 100; n++ {
		name := constants.BackupFilePrefix + stamp
		if n > 0 {
			name += "." + strconv.Itoa(n)
		}
		path := filepath.Join(m.backupDir, name+constants.BackupFileSuffix)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", nil, fmt.Errorf("failed to create backup file: %w", err)
		}
	}
	return "", nil, fmt.Errorf("failed to generate unique backup filename")
}

// parseName returns the timestamp and sequence encoded in a backup filename.
func parseName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	stamp, seqStr, hasSeq := strings.Cut(body, ".")
	ts, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	seq := 0
	if hasSeq {
		seq, err = strconv.Atoi(seqStr)
		if err != nil || seq < 1 {
			return time.Time{}, 0, false
		}
	}
	return ts, seq, true
}

// ListBackups returns all backups, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type ranked struct {
		info BackupInfo
		seq  int
	}
	var found []ranked
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, seq, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, ranked{
			info: BackupInfo{Path: filepath.Join(m.backupDir, entry.Name()), Timestamp: ts, Size: fi.Size()},
			seq:  seq,
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].info.Timestamp.Equal(found[j].info.Timestamp) {
			return found[i].info.Timestamp.After(found[j].info.Timestamp)
		}
		return found[i].seq > found[j].seq
	})

	backups := make([]BackupInfo, len(found))
	for i, r := range found {
		backups[i] = r.info
		if snap, err := readSnapshot(r.info.Path); err == nil {
			backups[i].Reason = snap.Reason
		}
	}
	return backups, nil
}

// rotateBackups removes the backups of pool p beyond the retention limit.
func (m *Manager) rotateBackups(p string) error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	kept := 0
	for _, b := range backups {
		if pool(b.Reason) != p {
			continue
		}
		if kept < m.keep {
			kept++
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", b.Path, err)
		}
	}
	return nil
}

func readSnapshot(path string) (snapshot, error) {
	var snap snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.Version != snapshotVersion || snap.Blobs == nil {
		return snap, ErrInvalidSnapshot
	}
	return snap, nil
}

// RestoreBackup replaces every blob with the contents of a snapshot. The
// current state is itself snapshotted first and returned.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	snap, err := readSnapshot(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("backup file does not exist: %s", backupPath)
		}
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	current, err := m.create("before restoring "+filepath.Base(backupPath), true)
	if err != nil {
		return "", fmt.Errorf("failed to backup current state before restore: %w", err)
	}

	keys, err := m.store.Keys()
	if err != nil {
		return current, fmt.Errorf("failed to list blobs: %w", err)
	}
	for _, key := range keys {
		if _, keep := snap.Blobs[key]; keep {
			continue
		}
		if err := m.store.Delete(key); err != nil {
			return current, fmt.Errorf("failed to remove blob %q: %w", key, err)
		}
	}
	for key, value := range snap.Blobs {
		if err := m.store.Set(key, value); err != nil {
			return current, fmt.Errorf("failed to restore blob %q: %w", key, err)
		}
	}
	logger.Info("Backup restored", "path", backupPath, "previous", current)
	return current, nil
}

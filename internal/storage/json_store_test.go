package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/posy/internal/storage"
	"github.com/julianstephens/posy/internal/storage/storagetest"
)

func newTestJSONStore(t *testing.T) *storage.JSONStore {
	t.Helper()
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "posy.json"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return s
}

func TestJSONStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return newTestJSONStore(t)
	})
}

func TestJSONStoreLoadNotInitialized(t *testing.T) {
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	if err := s.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("Load() error = %v, want %v", err, storage.ErrNotInitialized)
	}
	if _, _, err := s.Get("k"); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("Get() before Load error = %v, want %v", err, storage.ErrNotInitialized)
	}
}

func TestJSONStorePersistsAcrossLoads(t *testing.T) {
	s := newTestJSONStore(t)
	if err := s.Set("posy_settings", `{"palette":"rose"}`); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	reopened := storage.NewJSONStore(s.GetConfigPath())
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	v, ok, err := reopened.Get("posy_settings")
	if err != nil || !ok || v != `{"palette":"rose"}` {
		t.Errorf("Get() = %q, %v, %v", v, ok, err)
	}

	// Init on an existing file keeps its contents.
	again := storage.NewJSONStore(s.GetConfigPath())
	if err := again.Init(); err != nil {
		t.Fatalf("Init() on existing file failed: %v", err)
	}
	if _, ok, _ := again.Get("posy_settings"); !ok {
		t.Error("Init() on existing file dropped data")
	}
}

func TestJSONStoreNoTempFilesLeft(t *testing.T) {
	s := newTestJSONStore(t)
	for i := 0; i < 3; i++ {
		if err := s.Set("k", strings.Repeat("x", i)); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
	}
	entries, err := os.ReadDir(filepath.Dir(s.GetConfigPath()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only posy.json", names)
	}
	info, err := os.Stat(s.GetConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("storage mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestJSONStoreCorruptFileMovedAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posy.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s := storage.NewJSONStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() on corrupt file = %v, want soft recovery", err)
	}
	keys, _ := s.Keys()
	if len(keys) != 0 {
		t.Errorf("Keys() = %v, want empty", keys)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "posy.json.corrupt-*"))
	if len(matches) != 1 {
		t.Errorf("expected the corrupt file to be kept aside, found %v", matches)
	}
}

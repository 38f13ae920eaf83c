package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	perrors "github.com/julianstephens/posy/internal/errors"
	"github.com/julianstephens/posy/internal/logger"
)

const jsonDocumentVersion = 1

type document struct {
	Version int               `json:"version"`
	Blobs   map[string]string `json:"blobs"`
}

// JSONStore keeps every blob in a single JSON document. Each write replaces
// the whole file through a temp file and rename, so a crash leaves either the
// old or the new document on disk.
type JSONStore struct {
	path string
	doc  *document
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}
	s.doc = &document{Version: jsonDocumentVersion, Blobs: make(map[string]string)}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return perrors.WithHint(ErrNotInitialized, InitHint)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		// Keep the unreadable file for manual recovery and carry on empty.
		aside := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
		if rerr := os.Rename(s.path, aside); rerr != nil {
			return fmt.Errorf("failed to parse storage: %w", err)
		}
		logger.Warn("Storage file unreadable, moved aside", "path", aside, "error", err)
		doc = &document{Version: jsonDocumentVersion}
	}
	if doc.Blobs == nil {
		doc.Blobs = make(map[string]string)
	}
	if doc.Version > jsonDocumentVersion {
		return fmt.Errorf("storage document version %d is newer than supported version %d", doc.Version, jsonDocumentVersion)
	}
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) GetConfigPath() string { return s.path }

func (s *JSONStore) loaded() error {
	if s.doc == nil {
		return perrors.WithHint(ErrNotInitialized, InitHint)
	}
	return nil
}

func (s *JSONStore) Get(key string) (string, bool, error) {
	if err := s.loaded(); err != nil {
		return "", false, err
	}
	v, ok := s.doc.Blobs[key]
	return v, ok, nil
}

func (s *JSONStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.loaded(); err != nil {
		return err
	}
	prev, had := s.doc.Blobs[key]
	s.doc.Blobs[key] = value
	if err := s.save(); err != nil {
		if had {
			s.doc.Blobs[key] = prev
		} else {
			delete(s.doc.Blobs, key)
		}
		return err
	}
	return nil
}

func (s *JSONStore) Delete(key string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	prev, had := s.doc.Blobs[key]
	if !had {
		return nil
	}
	delete(s.doc.Blobs, key)
	if err := s.save(); err != nil {
		s.doc.Blobs[key] = prev
		return err
	}
	return nil
}

func (s *JSONStore) Keys() ([]string, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.doc.Blobs))
	for k := range s.doc.Blobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set storage permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

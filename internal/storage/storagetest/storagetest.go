// Package storagetest holds behaviour checks shared by every blob store.
package storagetest

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/storage"
)

// Run exercises the Provider contract against a freshly initialised store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Provider) {
	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get("absent")
		if err != nil || ok || v != "" {
			t.Errorf("Get(absent) = %q, %v, %v; want \"\", false, nil", v, ok, err)
		}
	})

	t.Run("set replaces whole value", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set("k", `[{"date":"2024-03-05"}]`); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		if err := s.Set("k", `[]`); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		v, ok, err := s.Get("k")
		if err != nil || !ok || v != `[]` {
			t.Errorf("Get(k) = %q, %v, %v; want [], true, nil", v, ok, err)
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set("", "x"); !errors.Is(err, storage.ErrEmptyKey) {
			t.Errorf("Set(\"\") error = %v, want %v", err, storage.ErrEmptyKey)
		}
	})

	t.Run("keys sorted and delete", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"posy_settings", "posy_garden_entries"} {
			if err := s.Set(k, "{}"); err != nil {
				t.Fatalf("Set(%s) failed: %v", k, err)
			}
		}
		keys, err := s.Keys()
		if err != nil {
			t.Fatalf("Keys() failed: %v", err)
		}
		if diff := cmp.Diff([]string{"posy_garden_entries", "posy_settings"}, keys); diff != "" {
			t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
		}

		if err := s.Delete("posy_settings"); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if err := s.Delete("never-set"); err != nil {
			t.Errorf("Delete(never-set) = %v, want nil", err)
		}
		if _, ok, _ := s.Get("posy_settings"); ok {
			t.Error("Get() found a deleted key")
		}
	})

	t.Run("history", func(t *testing.T) {
		s := newStore(t)
		h, ok := s.(storage.Historian)
		if !ok {
			t.Skip("store keeps no history")
		}
		for _, v := range []string{"a", "b", "c"} {
			if err := s.Set("k", v); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
		}
		if err := s.Delete("k"); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}

		revs, err := h.History("k", 0)
		if err != nil {
			t.Fatalf("History() failed: %v", err)
		}
		var got []string
		for _, r := range revs {
			got = append(got, r.Value)
		}
		if diff := cmp.Diff([]string{"c", "b", "a"}, got); diff != "" {
			t.Errorf("History() mismatch (-want +got):\n%s", diff)
		}

		revs, _ = h.History("k", 1)
		if len(revs) != 1 || revs[0].Value != "c" {
			t.Errorf("History(limit 1) = %+v, want newest only", revs)
		}
	})

	t.Run("history capped per key", func(t *testing.T) {
		s := newStore(t)
		h, ok := s.(storage.Historian)
		if !ok {
			t.Skip("store keeps no history")
		}
		if err := s.Set("other", "kept"); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		if err := s.Set("other", "current"); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		writes := constants.MaxBlobRevisions + 5
		for i := 0; i <= writes; i++ {
			if err := s.Set("k", strconv.Itoa(i)); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
		}

		revs, err := h.History("k", 0)
		if err != nil {
			t.Fatalf("History() failed: %v", err)
		}
		if len(revs) != constants.MaxBlobRevisions {
			t.Fatalf("History() kept %d revisions, want %d", len(revs), constants.MaxBlobRevisions)
		}
		// Newest replaced value is the one before the current, the oldest
		// survivor is MaxBlobRevisions writes back.
		if got, want := revs[0].Value, strconv.Itoa(writes-1); got != want {
			t.Errorf("newest revision = %q, want %q", got, want)
		}
		if got, want := revs[len(revs)-1].Value, strconv.Itoa(writes-constants.MaxBlobRevisions); got != want {
			t.Errorf("oldest revision = %q, want %q", got, want)
		}

		others, err := h.History("other", 0)
		if err != nil {
			t.Fatalf("History(other) failed: %v", err)
		}
		if len(others) != 1 || others[0].Value != "kept" {
			t.Errorf("History(other) = %+v, pruning leaked across keys", others)
		}
	})
}

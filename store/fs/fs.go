// Package fs implements the default filesystem store: one file per cache
// key inside a local, user-specific directory. Writes go to a temp file in
// the same directory and are committed with rename, so readers never see a
// partial entry and crashed writes never satisfy Exists.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	st "github.com/openproduce/mmn/store"
)

const entryExt = ".mmn"

type Store struct {
	dir string
}

var _ st.Store = (*Store)(nil)

// DefaultDir resolves the conventional cache directory. Precedence:
//
//  1. MMN_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/mmn
//
// Returns ("", false) if no base can be resolved.
func DefaultDir() (string, bool) {
	if d, ok := os.LookupEnv("MMN_CACHE_DIR"); ok && d != "" {
		return d, true
	}
	if base, err := os.UserCacheDir(); err == nil && base != "" {
		return filepath.Join(base, "mmn"), true
	}
	return "", false
}

// New creates the directory if needed and returns a store rooted at dir.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("fs: cache directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("fs: create cache directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	final := s.path(key)

	tmp, err := os.CreateTemp(s.dir, filepath.Base(final)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) Close(context.Context) error { return nil }

// Stats returns the number of entries and their total size in bytes.
// Not part of store.Store; used by operational tooling.
func (s *Store) Stats() (count int, bytes int64, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != entryExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		count++
		bytes += info.Size()
	}
	return count, bytes, nil
}

// Clear removes every entry. Temp files from interrupted writes go too.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != entryExt && !strings.Contains(name, entryExt+".tmp") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	// keys are hex digests; separator bytes are replaced anyway
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.dir, safe+entryExt)
}

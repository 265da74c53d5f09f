package fs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSetGetExistsDel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	key := "0a1b2c"
	val := []byte("entry bytes \x00\xff")

	if ok, err := s.Exists(ctx, key); ok || err != nil {
		t.Fatalf("Exists before Set: ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.Get(ctx, key); ok || err != nil {
		t.Fatalf("Get before Set: ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, key, val); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, err := s.Exists(ctx, key); !ok || err != nil {
		t.Fatalf("Exists after Set: ok=%v err=%v", ok, err)
	}
	got, ok, err := s.Get(ctx, key)
	if !ok || err != nil || !bytes.Equal(got, val) {
		t.Fatalf("Get after Set: %q ok=%v err=%v", got, ok, err)
	}

	if err := s.Del(ctx, key); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := s.Exists(ctx, key); ok {
		t.Fatalf("entry survived Del")
	}
	if err := s.Del(ctx, key); err != nil {
		t.Fatalf("Del must be idempotent: %v", err)
	}
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Set(ctx, "k", []byte("old")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("new")); err != nil {
		t.Fatalf("Set (overwrite): %v", err)
	}
	got, _, _ := s.Get(ctx, "k")
	if string(got) != "new" {
		t.Fatalf("overwrite lost: %q", got)
	}
}

// Committed writes must leave no temp files behind.
func TestSetLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.Set(ctx, "deadbeef", []byte(strings.Repeat("x", 100))); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single entry file, got %d", len(entries))
	}
}

func TestKeySanitization(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	key := "a/b\\c:d"
	if err := s.Set(ctx, key, []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, key)
	if !ok || err != nil || string(got) != "v" {
		t.Fatalf("Get: %q ok=%v err=%v", got, ok, err)
	}
	// nothing may have escaped the store directory
	if _, err := os.Stat(filepath.Join(s.Dir(), "a")); !os.IsNotExist(err) {
		t.Fatalf("key created a path outside the flat store layout")
	}
}

func TestStatsAndClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, k := range []string{"k1", "k2", "k3"} {
		if err := s.Set(ctx, k, []byte("0123456789")); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	// stray files without the entry extension are not counted
	if err := os.WriteFile(filepath.Join(s.Dir(), "README"), []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	count, size, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if count != 3 || size != 30 {
		t.Fatalf("Stats: count=%d size=%d", count, size)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	count, size, err = s.Stats()
	if err != nil || count != 0 || size != 0 {
		t.Fatalf("Stats after Clear: count=%d size=%d err=%v", count, size, err)
	}
	// the stray file is untouched
	if _, err := os.Stat(filepath.Join(s.Dir(), "README")); err != nil {
		t.Fatalf("Clear removed a foreign file: %v", err)
	}
}

func TestDefaultDirEnvOverride(t *testing.T) {
	t.Setenv("MMN_CACHE_DIR", "/tmp/custom-cache")
	d, ok := DefaultDir()
	if !ok || d != "/tmp/custom-cache" {
		t.Fatalf("DefaultDir with env: %q ok=%v", d, ok)
	}

	t.Setenv("MMN_CACHE_DIR", "")
	d, ok = DefaultDir()
	if ok && !strings.HasSuffix(d, string(filepath.Separator)+"mmn") {
		t.Fatalf("DefaultDir fallback: %q", d)
	}
}

func TestNewRejectsEmptyDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("New accepted an empty directory")
	}
}

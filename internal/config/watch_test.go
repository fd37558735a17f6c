package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "arcade.yaml")
	b := filepath.Join(dir, "profiles", "event.yaml")
	writeFile(t, a, "version: one\n")

	var changed []string
	w := NewFileWatcher([]string{a, b}, time.Hour, func(p string) { changed = append(changed, p) })
	w.scanAll(true)
	if len(changed) != 0 {
		t.Fatalf("priming reported %v", changed)
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(a, later, later); err != nil {
		t.Fatal(err)
	}
	writeFile(t, b, "version: two\n")
	w.scanAll(false)
	if len(changed) != 2 {
		t.Fatalf("want both files reported, got %v", changed)
	}

	w.scanAll(false)
	if len(changed) != 2 {
		t.Fatalf("unchanged files reported again: %v", changed)
	}
}

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPruneRemovesOldJournals(t *testing.T) {
	dir := t.TempDir()
	today := time.Now().UTC().Format("2006-01-02")

	old := filepath.Join(dir, "alerts-2020-01-01.ndjson")
	current := filepath.Join(dir, "alerts-"+today+".ndjson")
	unrelated := filepath.Join(dir, "cpu-sentinel.log")
	touch(t, old)
	touch(t, current)
	touch(t, unrelated)

	r := NewRotator(dir, 30)
	r.prune()

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected old journal removed")
	}
	if _, err := os.Stat(current); err != nil {
		t.Error("expected current journal kept")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("expected unrelated file kept")
	}
}

func TestStartStop(t *testing.T) {
	r := NewRotator(t.TempDir(), 30)
	r.Start()
	r.Stop()
}

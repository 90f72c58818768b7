package sampler

import (
	"os"
	"strings"
	"testing"
)

func TestSnapshotIncludesSelf(t *testing.T) {
	s, err := NewProcSampler()
	if err != nil {
		t.Fatal(err)
	}

	snaps, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snaps) == 0 {
		t.Fatal("expected at least one process")
	}

	self := int32(os.Getpid())
	found := false
	for _, p := range snaps {
		if p.PID == self {
			found = true
			if p.Name == "" {
				t.Error("expected a name for own process")
			}
			if p.CPUPercent < 0 {
				t.Errorf("negative cpu: %v", p.CPUPercent)
			}
		}
	}
	if !found {
		t.Error("own pid missing from snapshot")
	}
}

func TestCommandLineSelf(t *testing.T) {
	s, err := NewProcSampler()
	if err != nil {
		t.Fatal(err)
	}

	cmd, ok := s.CommandLine(int32(os.Getpid()))
	if !ok || cmd == "" {
		t.Fatal("expected own command line")
	}
	if strings.ContainsRune(cmd, 0) {
		t.Error("NUL separators must be replaced")
	}

	// second read comes from the cache
	cached, ok := s.CommandLine(int32(os.Getpid()))
	if !ok || cached != cmd {
		t.Errorf("cache mismatch: %q vs %q", cached, cmd)
	}
}

func TestCommandLineMissingProcess(t *testing.T) {
	s, err := NewProcSampler()
	if err != nil {
		t.Fatal(err)
	}

	if cmd, ok := s.CommandLine(1 << 22); ok {
		t.Errorf("expected failure for bogus pid, got %q", cmd)
	}
}

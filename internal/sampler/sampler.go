package sampler

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

const (
	maxHandles = 4096
	maxArgv    = 2048
	// java command lines get long
	maxCmdline = 8 * 1024
)

// ProcSampler reads the process table through gopsutil. Per-pid process
// handles are cached across snapshots: Percent(0) measures CPU since the
// previous call on the same handle, so reusing handles is what turns the
// reading into a per-tick delta instead of a lifetime average.
type ProcSampler struct {
	handles *lru.Cache // pid -> *process.Process
	argv    *lru.Cache // pid -> resolved command line
}

func NewProcSampler() (*ProcSampler, error) {
	handles, err := lru.New(maxHandles)
	if err != nil {
		return nil, err
	}
	argv, err := lru.New(maxArgv)
	if err != nil {
		return nil, err
	}
	return &ProcSampler{handles: handles, argv: argv}, nil
}

// Prime performs one throwaway snapshot so the handle cache is populated
// before the first real evaluation. Without it the first tick would score
// every process by its lifetime average CPU.
func (s *ProcSampler) Prime() {
	if _, err := s.Snapshot(); err != nil {
		zap.S().Warnf("sampler prime: %v", err)
	}
}

func (s *ProcSampler) Snapshot() ([]ProcessSnapshot, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("list pids: %w", err)
	}

	snaps := make([]ProcessSnapshot, 0, len(pids))
	for _, pid := range pids {
		p := s.handle(pid)
		if p == nil {
			continue
		}

		// the process may exit between the pid listing and these reads;
		// every failure just drops it from this snapshot
		cpu, err := p.Percent(0)
		if err != nil {
			s.handles.Remove(pid)
			continue
		}
		name, err := p.Name()
		if err != nil {
			s.handles.Remove(pid)
			continue
		}

		snap := ProcessSnapshot{
			PID:        pid,
			Name:       name,
			CPUPercent: cpu,
		}
		if created, err := p.CreateTime(); err == nil && created > 0 {
			snap.StartTime = time.UnixMilli(created)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (s *ProcSampler) handle(pid int32) *process.Process {
	if v, ok := s.handles.Get(pid); ok {
		return v.(*process.Process)
	}
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}
	s.handles.Add(pid, p)
	return p
}

// CommandLine reads /proc/<pid>/cmdline, with NUL separators replaced by
// spaces. Results are cached; a recycled pid can serve a stale command line
// for as long as the entry lives, same class of staleness as the alert
// cooldown itself.
func (s *ProcSampler) CommandLine(pid int32) (string, bool) {
	if v, ok := s.argv.Get(pid); ok {
		return v.(string), true
	}

	raw, err := os.ReadFile("/proc/" + strconv.Itoa(int(pid)) + "/cmdline")
	if err != nil {
		zap.S().Debugf("cmdline pid %d: %v", pid, err)
		return "", false
	}
	raw = bytes.TrimSpace(bytes.ReplaceAll(raw, []byte{0}, []byte{' '}))
	if len(raw) == 0 {
		return "", false
	}
	cmdline := string(raw)
	if len(cmdline) > maxCmdline {
		cmdline = cmdline[:maxCmdline]
	}
	s.argv.Add(pid, cmdline)
	return cmdline, true
}

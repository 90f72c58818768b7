package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cpu-sentinel/internal/alerts"
	"cpu-sentinel/internal/config"
)

// Runner executes the executable *.sh files in the hook directory once per
// delivered alert, with the alert fields exposed through CPU_ALERT_*
// environment variables. Hook failures never reach the engine.
type Runner struct {
	cfg *config.Config
}

func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

func (r *Runner) Run(a alerts.Alert) {
	scripts, err := findScripts(r.cfg.Hooks.Dir)
	if err != nil {
		zap.S().Warnf("hooks: %v", err)
		return
	}

	env := buildEnv(a)
	for _, script := range scripts {
		if err := r.execute(script, env); err != nil {
			zap.S().Errorf("hook %s: %v", script, err)
		}
	}
}

func buildEnv(a alerts.Alert) map[string]string {
	return map[string]string{
		"CPU_ALERT_ID":        a.ID,
		"CPU_ALERT_TIMESTAMP": a.Time.UTC().Format(time.RFC3339),
		"CPU_ALERT_PID":       strconv.Itoa(int(a.PID)),
		"CPU_ALERT_NAME":      a.Name,
		"CPU_ALERT_CPU":       strconv.FormatFloat(a.CPUPercent, 'f', 1, 64),
		"CPU_ALERT_THRESHOLD": strconv.FormatFloat(a.Threshold, 'f', 1, 64),
		"CPU_ALERT_STARTED":   a.StartedString(),
		"CPU_ALERT_CMDLINE":   a.Cmdline,
	}
}

func findScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".sh") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Mode()&0111 == 0 {
			continue
		}

		scripts = append(scripts, filepath.Join(dir, entry.Name()))
	}
	return scripts, nil
}

func (r *Runner) execute(scriptPath string, env map[string]string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.HookTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/bash", scriptPath)
	cmd.Env = os.Environ()
	for key, value := range env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("exit code %d", exitErr.ExitCode())
		}
		return err
	}
	return nil
}

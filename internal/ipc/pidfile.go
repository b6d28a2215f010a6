// Package ipc implements the PID file / single-instance guard and the
// named message queue used for `--stop` / `--reload-*` control of a
// running daemon (spec.md §4.10, §6).
package ipc

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PidFile guards single-instance enforcement (spec.md §6 "Single-instance
// enforcement... via named-queue IPC"). The file is held for the lifetime
// of the process and removed on clean shutdown.
type PidFile struct {
	path string
}

// Acquire writes the current PID to path, failing if a pid file already
// exists and names a process that is still alive (spec.md §257 "PID file
// is held for the lifetime of the process").
func Acquire(path string) (*PidFile, error) {
	if path == "" {
		return &PidFile{}, nil
	}
	if existing, err := os.ReadFile(path); err == nil {
		if pid, perr := strconv.Atoi(strings.TrimSpace(string(existing))); perr == nil && processAlive(pid) {
			return nil, fmt.Errorf("pid file %s names running process %d", path, pid)
		}
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return nil, fmt.Errorf("write pid file %s: %w", path, err)
	}
	return &PidFile{path: path}, nil
}

// Release removes the pid file. Safe to call on a zero-value PidFile
// (empty configured path).
func (p *PidFile) Release() {
	if p == nil || p.path == "" {
		return
	}
	_ = os.Remove(p.path)
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds; signal 0 probes liveness
	// without actually delivering anything.
	return proc.Signal(syscallSig0()) == nil
}

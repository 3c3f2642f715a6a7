//go:build linux

// Package cgroup implements the Cgroup Controller: provisioning,
// configuring, and reading a guest's cgroup v2 directory, and broadcasting
// signals to every process it contains.
package cgroup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/dsinha-oss/judgebox/task"
)

// Default compile-time ceilings. The system never rejects a Task because
// its limits are too lax — it silently clamps to these, a safety posture
// rather than an API contract callers can rely on. Configurable via
// Limits for deployments that want a different ceiling.
const (
	DefaultHardMemoryCap = 512 * 1024 * 1024 // 512 MiB
	DefaultHardPidsCap   = 1024
)

// Limits bounds what a Task may ask for, regardless of what it requests.
type Limits struct {
	HardMemoryCap uint64
	HardPidsCap   uint64
}

// DefaultLimits returns the compile-time ceiling used when a deployment
// does not configure its own.
func DefaultLimits() Limits {
	return Limits{HardMemoryCap: DefaultHardMemoryCap, HardPidsCap: DefaultHardPidsCap}
}

// Controller provisions and reads a single cgroup v2 directory. The
// well-known parent path is an immutable constructor parameter rather than
// a hard-coded constant, so tests can run against a fixture cgroup.
type Controller struct {
	mountPath string
	limits    Limits
}

// NewController builds a Controller rooted at mountPath (the cgroup v2
// unified mount, e.g. "/sys/fs/cgroup").
func NewController(mountPath string, limits Limits) *Controller {
	return &Controller{mountPath: mountPath, limits: limits}
}

// Handle is an opened directory descriptor for a provisioned cgroup,
// usable for atomic child attachment via clone3's CLONE_INTO_CGROUP. It is
// a value-type handle (opaque fd plus path) owned exclusively by whoever
// holds it; Close releases the fd on every exit path.
type Handle struct {
	Path string
	file *os.File
}

// Fd returns the file descriptor clone3 attaches the new child into.
func (h *Handle) Fd() uintptr {
	return h.file.Fd()
}

// Close releases the directory descriptor. Safe to call once; ownership
// of the underlying kernel reference transfers to the child at clone3, so
// callers close the handle immediately after clone returns.
func (h *Handle) Close() error {
	if h == nil || h.file == nil {
		return nil
	}
	return h.file.Close()
}

// Provision validates the cgroup mount is present, enables the memory and
// pids controllers on dirPath's parent, ensures dirPath exists (idempotent
// — a host-provisioned directory is the common case), applies the task's
// clamped memory/pids limits plus memory.oom.group, and returns an opened
// directory handle.
func (c *Controller) Provision(dirPath string, t task.Task) (*Handle, error) {
	if _, err := os.Stat(c.mountPath); err != nil {
		return nil, fmt.Errorf("cgroup v2 mount not present at %s: %w", c.mountPath, err)
	}

	parent := filepath.Dir(dirPath)
	if err := enableControllers(parent); err != nil {
		return nil, fmt.Errorf("enable controllers on %s: %w", parent, err)
	}

	if err := os.MkdirAll(dirPath, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("mkdir %s: %w", dirPath, err)
	}

	mem := clamp(t.MaxMemory, c.limits.HardMemoryCap)
	if err := writeFile(dirPath, "memory.high", strconv.FormatUint(mem, 10)); err != nil {
		return nil, err
	}
	if err := writeFile(dirPath, "memory.max", strconv.FormatUint(mem, 10)); err != nil {
		return nil, err
	}
	if err := writeFile(dirPath, "memory.oom.group", "1"); err != nil {
		return nil, err
	}

	pids := clamp(t.MaxProcesses, c.limits.HardPidsCap)
	if err := writeFile(dirPath, "pids.max", strconv.FormatUint(pids, 10)); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(dirPath, unix.O_DIRECTORY|unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open cgroup directory %s: %w", dirPath, err)
	}

	return &Handle{Path: dirPath, file: file}, nil
}

// EnableSubtreeControllers is the host-provisioning half of Provision: it
// verifies the cgroup v2 mount is present and enables the memory and pids
// controllers on the unified mount and on parentPath, without requiring a
// Task or creating any slot directory. Intended for one-time setup ahead of
// a pool of leased slots — every ancestor between the mount and a slot
// directory needs the controllers enabled for the slot to use them.
func (c *Controller) EnableSubtreeControllers(parentPath string) error {
	if _, err := os.Stat(c.mountPath); err != nil {
		return fmt.Errorf("cgroup v2 mount not present at %s: %w", c.mountPath, err)
	}
	if err := enableControllers(c.mountPath); err != nil {
		return fmt.Errorf("enable controllers on %s: %w", c.mountPath, err)
	}
	return enableControllers(parentPath)
}

func clamp(requested, cap uint64) uint64 {
	if cap == 0 || requested < cap {
		return requested
	}
	return cap
}

// enableControllers writes "+memory +pids" to parentPath's
// cgroup.subtree_control. A short write is reported as failure.
func enableControllers(parentPath string) error {
	path := filepath.Join(parentPath, "cgroup.subtree_control")
	f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	const want = "+memory +pids"
	n, err := f.WriteString(want)
	if err != nil && !errors.Is(err, syscall.EBUSY) {
		return err
	}
	if n != len(want) && !errors.Is(err, syscall.EBUSY) {
		return fmt.Errorf("short write to %s", path)
	}
	return nil
}

// writeFile writes value to dirPath/name using open/write/close. A short
// write is reported as failure; this is a control-file write, never a
// best-effort read.
func writeFile(dirPath, name, value string) error {
	path := filepath.Join(dirPath, name)
	f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := f.WriteString(value)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if n != len(value) {
		return fmt.Errorf("short write to %s", path)
	}
	return nil
}

// readBestEffort reads the entire contents of dirPath/name. If the file
// cannot be opened — e.g. the cgroup just vanished — it returns an empty
// string without failing the caller: reads are best-effort by design,
// unlike the writes above.
func readBestEffort(dirPath, name string) string {
	path := filepath.Join(dirPath, name)
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(b)
}

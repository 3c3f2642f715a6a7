//go:build linux

// Package sandboxentry implements the Sandbox Entry: it orchestrates the
// Cgroup Controller, Guest Launcher and Supervisor into the single
// operation this repo exposes, secure_execute.
package sandboxentry

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dsinha-oss/judgebox/cgroup"
	"github.com/dsinha-oss/judgebox/launcher"
	"github.com/dsinha-oss/judgebox/runid"
	"github.com/dsinha-oss/judgebox/supervisor"
	"github.com/dsinha-oss/judgebox/task"
)

// cloneArgs mirrors struct clone_args from uapi/linux/sched.h, the ABI
// clone3(2) expects.
type cloneArgs struct {
	Flags      uint64
	Pidfd      uint64
	ChildTid   uint64
	ParentTid  uint64
	ExitSignal uint64
	Stack      uint64
	StackSize  uint64
	TLS        uint64
	SetTid     uint64
	SetTidSize uint64
	Cgroup     uint64
}

// Entry orchestrates a single guest execution against a cgroup slot pool.
type Entry struct {
	ctrl *cgroup.Controller
	pool *cgroup.Pool
	log  *slog.Logger
}

// New builds a Sandbox Entry over the given Cgroup Controller and slot
// pool.
func New(ctrl *cgroup.Controller, pool *cgroup.Pool, log *slog.Logger) *Entry {
	return &Entry{ctrl: ctrl, pool: pool, log: log}
}

// SecureExecute runs t to completion (or to a resource violation) and
// returns its verdict. It never panics and never returns an error to the
// caller — every failure is encoded into the TaskResult itself. ctx is used
// only to correlate this invocation's log lines; cancelling it does not
// abort the guest, which is governed solely by its own resource limits.
func (e *Entry) SecureExecute(ctx context.Context, t task.Task) task.TaskResult {
	result := task.NewSetupFailure()

	t = t.WithRunID(runid.New())
	alias := runid.Alias()
	e.log.InfoContext(ctx, "starting guest", slog.String("run_id", t.RunID.String()), slog.String("alias", alias))

	slot, dirPath, err := e.pool.Lease(t.RunID)
	if err != nil {
		e.log.ErrorContext(ctx, "lease cgroup slot failed", slog.Any("err", err))
		result.ErrorMsg = task.ErrCgroupSetup
		return result
	}
	defer func() {
		if err := e.pool.Release(slot); err != nil {
			e.log.WarnContext(ctx, "release cgroup slot failed", slog.String("slot", slot), slog.Any("err", err))
		}
	}()

	handle, err := e.ctrl.Provision(dirPath, t)
	if err != nil {
		e.log.ErrorContext(ctx, "provision cgroup failed", slog.Any("err", err))
		result.ErrorMsg = task.ErrCgroupSetup
		return result
	}

	pid, err := cloneIntoCgroup(handle)
	// The kernel has taken its own reference to the cgroup fd on a
	// successful clone; either way we are done with our own reference to
	// it. The handle's Path remains valid for the Supervisor, which reads
	// and writes cgroup control files by path, not through this fd.
	closeErr := handle.Close()
	if err != nil {
		e.log.ErrorContext(ctx, "clone3 failed", slog.Any("err", err))
		result.ErrorMsg = task.ErrChildCreate
		return result
	}
	if closeErr != nil {
		e.log.WarnContext(ctx, "close cgroup handle failed", slog.Any("err", closeErr))
	}

	if pid == 0 {
		// Child: never returns.
		launcher.Run(t)
		unix.Exit(127)
	}

	result = supervisor.Supervise(e.ctrl, handle, pid, t)
	e.log.InfoContext(ctx, "guest finished",
		slog.String("run_id", t.RunID.String()),
		slog.Int("status", result.Status),
		slog.String("error_msg", result.ErrorMsg),
	)
	return result
}

// cloneIntoCgroup spawns the child with clone3, atomically attaching it
// to the cgroup behind handle, clearing signal handlers to default, and
// placing it in a new PID namespace so PID 1 inside is the guest itself —
// neutralizing host-visible operations like kill(1, ...) or reboot().
// Returns 0 in the child (where SecureExecute then hands control to
// launcher.Run, which execs the guest), and the child's pid in the parent.
func cloneIntoCgroup(handle *cgroup.Handle) (int, error) {
	args := cloneArgs{
		Flags: uint64(unix.CLONE_NEWPID |
			unix.CLONE_CLEAR_SIGHAND |
			unix.CLONE_INTO_CGROUP),
		ExitSignal: uint64(unix.SIGCHLD),
		Cgroup:     uint64(handle.Fd()),
	}

	pid, _, errno := unix.Syscall(
		unix.SYS_CLONE3,
		uintptr(unsafe.Pointer(&args)),
		unsafe.Sizeof(args),
		0,
	)
	if errno != 0 {
		return -1, fmt.Errorf("clone3: %w", errno)
	}
	return int(pid), nil
}

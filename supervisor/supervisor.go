//go:build linux

// Package supervisor implements the parent-side state machine that owns
// the guest process group's lifecycle: waits for the initial trace-stop,
// polls cgroup counters while the guest runs free, enforces limits by
// broadcasting SIGKILL, reaps every descendant, and classifies the
// terminal state into a verdict.
package supervisor

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/dsinha-oss/judgebox/cgroup"
	"github.com/dsinha-oss/judgebox/signalname"
	"github.com/dsinha-oss/judgebox/task"
)

// Supervise runs the full START..DONE state machine for a child created
// with childPID, already attached to the cgroup behind h. It always
// returns a TaskResult; it never lets an internal failure propagate past
// its own boundary.
func Supervise(ctrl *cgroup.Controller, h *cgroup.Handle, childPID int, t task.Task) task.TaskResult {
	result := task.NewSetupFailure()

	// The supervisor is the nearest subreaper for the cgroup's lineage,
	// so grandchildren reparented after the guest exits are still
	// observable via wait() during the drain phase.
	_ = unix.Prctl(unix.PR_SET_CHILD_SUBREAPER, 1, 0, 0, 0)

	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(childPID, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			// The initial wait itself failed: broadcast-kill, drain, and
			// report a setup failure — never a partial verdict.
			ctrl.BroadcastSignal(h, unix.SIGKILL)
			drainZombies()
			result.ErrorMsg = task.ErrChildExitedPreExec
			return result
		}
		break
	}

	switch {
	case ws.Exited() || ws.Signaled():
		// Child died before ever calling execve().
		result.ErrorMsg = task.ErrChildExitedPreExec
		if ws.Exited() {
			result.ExitCode = ws.ExitStatus()
			result.Signal = 0
		} else {
			result.ExitCode = -1
			result.Signal = int(ws.Signal())
		}
		return result

	case ws.Stopped() && ws.StopSignal() == unix.SIGTRAP:
		// Expected: the child's first exec delivered the trace-stop. Fall
		// through to READY → RUNNING below.

	case ws.Stopped():
		// Stopped with something other than the exec trace-stop: treat as
		// a setup failure, not a resource violation.
		ctrl.BroadcastSignal(h, unix.SIGKILL)
		drainZombies()
		result.ErrorMsg = fmt.Sprintf("child terminated before execv() with signal %s", signalname.Of(int(ws.StopSignal())))
		result.Signal = int(ws.StopSignal())
		return result

	default:
		ctrl.BroadcastSignal(h, unix.SIGKILL)
		drainZombies()
		result.ErrorMsg = task.ErrChildExitedPreExec
		return result
	}

	// READY → RUNNING: snapshot the baseline, then detach so the guest
	// runs free — the cgroup, not ptrace, is the enforcement mechanism
	// from here on.
	t0 := ctrl.CPUUsageUsec(h)
	e0 := ctrl.MemoryEvents(h)
	_ = unix.PtraceDetach(childPID)

	var peak uint64
	maxCPUUsec := t.MaxCPUTime * 1_000_000

	for {
		wpid, err := unix.Wait4(childPID, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}

		m := ctrl.CurrentMemoryBytes(h)
		if m > peak {
			peak = m
		}
		tCur := ctrl.CPUUsageUsec(h)
		e := ctrl.MemoryEvents(h)
		if (tCur-t0) > maxCPUUsec || e.Max > e0.Max {
			ctrl.BroadcastSignal(h, unix.SIGKILL)
		}

		if wpid > 0 && (ws.Exited() || ws.Signaled()) {
			break
		}
		if err != nil && err != unix.EINTR {
			// Should not normally occur once detached; treat as terminal
			// so the loop cannot spin forever against a dead tracee.
			break
		}

		runtime.Gosched()
	}

	// RUNNING → REAPING: one more unconditional kill tolerates processes
	// that are already dead, then drain until no descendant remains.
	ctrl.BroadcastSignal(h, unix.SIGKILL)
	drainZombies()

	// CLASSIFY
	tFinal := ctrl.CPUUsageUsec(h)
	if m := ctrl.CurrentMemoryBytes(h); m > peak {
		peak = m
	}
	if p := ctrl.PeakMemoryBytes(h); p > peak {
		peak = p
	}
	eFinal := ctrl.MemoryEvents(h)

	execUsec := tFinal - t0
	result.Status = task.StatusCompleted
	result.ExecTimeMs = execUsec / 1000
	result.MemoryUsedKB = peak >> 10

	if ws.Exited() {
		result.ExitCode = ws.ExitStatus()
		result.Signal = 0
		if result.ExitCode == 0 {
			result.ErrorMsg = task.ErrNone
		} else {
			result.ErrorMsg = task.ErrNZEC
		}
		return result
	}

	// WIFSIGNALED: classify by priority — MLE > TLE > OLE > generic.
	result.ExitCode = -1
	sig := int(ws.Signal())
	result.Signal = sig

	mle := eFinal.Max > e0.Max || eFinal.OOMKill > e0.OOMKill || eFinal.OOMGroupKill > e0.OOMGroupKill
	tle := (sig == int(unix.SIGXCPU) || sig == int(unix.SIGKILL)) && execUsec > maxCPUUsec

	switch {
	case mle:
		result.ErrorMsg = task.ErrMLE
	case tle:
		result.ErrorMsg = task.ErrTLE
	case sig == int(unix.SIGXFSZ):
		result.ErrorMsg = task.ErrOLE
	default:
		result.ErrorMsg = fmt.Sprintf("terminated by signal: %s", signalname.Of(sig))
	}
	return result
}

// drainZombies repeatedly reaps any descendant until wait(2) reports
// ECHILD, guaranteeing no zombie outlives the invocation. An unconditional
// SIGKILL broadcast should already have been issued by the caller.
func drainZombies() {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(-1, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err == unix.ECHILD {
			return
		}
		if err != nil {
			return
		}
	}
}

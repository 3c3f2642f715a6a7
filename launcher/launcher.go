//go:build linux

// Package launcher implements the Guest Launcher: the setup code that runs
// in the condemned child between clone and exec. It never returns except on
// catastrophe, in which case it exits with a stage-specific code so the
// Supervisor can tell where setup failed from the child's first wait status.
package launcher

import (
	"golang.org/x/sys/unix"

	"github.com/dsinha-oss/judgebox/task"
)

// SandboxUID and SandboxGID are the fixed unprivileged identity the guest
// runs as, matching the traditional "nobody" uid/gid.
const (
	SandboxUID = 65534
	SandboxGID = 65534
)

// Exit codes for each Launcher failure stage. Unique per stage so the
// Supervisor can identify where setup failed, though in this design every
// pre-exec child exit — regardless of code — is reported uniformly as
// "child exited before execv()"; the codes exist for operators reading a
// core dump or a debug log, not for verdict classification.
const (
	ErrSetTimeLimit  = 11
	ErrSetFSizeLimit = 12
	ErrSetCoreLimit  = 13
	ErrNoNewPrivs    = 14
	ErrSetUID        = 15
	ErrSetCaps       = 16
	ErrChdir         = 17
	ErrNullFD        = 18
	ErrSetStdin      = 19
	ErrSetStdout     = 20
	ErrSetStderr     = 21
	ErrPtrace        = 22
	ErrExec          = 23
)

// Run applies rlimits, drops privileges and capabilities, redirects
// standard streams, requests tracing, and execs the guest. It is called
// in the child immediately after clone3 returns there; on any failure it
// exits the process with a stage-specific code instead of returning.
func Run(t task.Task) {
	setRlimits(t)
	setNoNewPrivs()
	dropPrivileges()
	if err := dropAllCapabilities(); err != nil {
		unix.Exit(ErrSetCaps)
	}
	chdirWorkDir(t)
	redirectStdio(t)
	traceMe()
	execGuest(t)
}

func setRlimits(t task.Task) {
	// RLIMIT_CPU: defense in depth. The cgroup's CPU accounting in the
	// Supervisor is authoritative; this rlimit is a backstop in case the
	// supervising process itself dies before it can act.
	cpu := t.MaxCPUTime + 1
	if err := unix.Setrlimit(unix.RLIMIT_CPU, &unix.Rlimit{Cur: cpu, Max: cpu}); err != nil {
		unix.Exit(ErrSetTimeLimit)
	}

	fsize := t.MaxFileSize
	if err := unix.Setrlimit(unix.RLIMIT_FSIZE, &unix.Rlimit{Cur: fsize, Max: fsize}); err != nil {
		unix.Exit(ErrSetFSizeLimit)
	}

	if err := unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{Cur: 0, Max: 0}); err != nil {
		unix.Exit(ErrSetCoreLimit)
	}

	// RLIMIT_AS is intentionally not set: memory is enforced by the
	// cgroup, which is a superset of a virtual-memory rlimit and doesn't
	// penalize guests that merely reserve address space without touching it.
}

func setNoNewPrivs() {
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		unix.Exit(ErrNoNewPrivs)
	}
}

// dropPrivileges sets gid then uid — order matters, since after the uid
// drop the process no longer has permission to change its gid — and
// verifies the effective ids actually changed.
func dropPrivileges() {
	if err := unix.Setgid(SandboxGID); err != nil {
		unix.Exit(ErrSetUID)
	}
	if err := unix.Setuid(SandboxUID); err != nil {
		unix.Exit(ErrSetUID)
	}
	if unix.Geteuid() != SandboxUID || unix.Getegid() != SandboxGID {
		unix.Exit(ErrSetUID)
	}
}

func chdirWorkDir(t task.Task) {
	if err := unix.Chdir(t.WorkDir); err != nil {
		unix.Exit(ErrChdir)
	}
}

// redirectStdio reopens stdin/stdout/stderr on the task's I/O files. All
// three paths are resolved relative to the working directory entered in
// the previous step.
func redirectStdio(t task.Task) {
	if t.InputFile == "" || t.OutputFile == "" || t.ErrorFile == "" {
		unix.Exit(ErrNullFD)
	}

	if err := reopen(unix.Stdin, t.InputFile, unix.O_RDONLY, 0); err != nil {
		unix.Exit(ErrSetStdin)
	}
	if err := reopen(unix.Stdout, t.OutputFile, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0644); err != nil {
		unix.Exit(ErrSetStdout)
	}
	if err := reopen(unix.Stderr, t.ErrorFile, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0644); err != nil {
		unix.Exit(ErrSetStderr)
	}
}

// reopen opens path with flags and dup2's it onto fd, closing the
// freshly opened descriptor afterward.
func reopen(fd int, path string, flags int, mode uint32) error {
	newFd, err := unix.Open(path, flags, mode)
	if err != nil {
		return err
	}
	defer unix.Close(newFd)
	return unix.Dup2(newFd, fd)
}

// traceMe places the child in a state where the next exec delivers a
// trace-stop to the parent, which is how the Supervisor synchronizes on
// "setup is complete, guest is about to run".
func traceMe() {
	if err := unix.PtraceTraceme(); err != nil {
		unix.Exit(ErrPtrace)
	}
}

// execGuest never writes to stdout/stderr itself; every diagnostic from
// this package is conveyed through the process exit code the Supervisor
// reads from the initial wait.
func execGuest(t task.Task) {
	argv := t.Args
	if len(argv) == 0 {
		argv = []string{t.ExecPath}
	}
	err := unix.Exec(t.ExecPath, argv, buildEnv(t.Env))
	// Exec only returns on failure.
	_ = err
	unix.Exit(ErrExec)
}

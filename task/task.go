// Package task defines the immutable request and verdict records exchanged
// with the sandboxed-launch core.
package task

import "github.com/google/uuid"

// EnvVar is a single KEY=VALUE environment variable passed to the guest.
type EnvVar struct {
	Key string
	Val string
}

// Task is an immutable request to run a single guest executable under
// bounded CPU, memory, output size and process-count limits.
type Task struct {
	// Absolute path to the guest executable.
	ExecPath string

	// Ordered argument strings; Args[0] is argv[0].
	Args []string

	// Working directory the guest is chdir'd into before exec.
	WorkDir string

	// Standard stream redirection targets. Input is opened read-only;
	// Output and Error are opened for writing and truncated.
	InputFile  string
	OutputFile string
	ErrorFile  string

	// Environment passed to the guest's exec. When empty, the Launcher
	// execs with a minimal baseline environment instead of inheriting
	// the supervisor's.
	Env []EnvVar

	// Resource limits.
	MaxCPUTime   uint64 // whole seconds
	MaxMemory    uint64 // bytes
	MaxFileSize  uint64 // bytes
	MaxProcesses uint64

	// RunID correlates this invocation's cgroup slot lease and log lines.
	// It never appears in the verdict.
	RunID uuid.UUID
}

// WithRunID returns a copy of t carrying a freshly assigned run identity.
// Task itself is read-only after construction; callers obtain a task ready
// for secure_execute by assigning the identity once, at the Sandbox Entry
// boundary.
func (t Task) WithRunID(id uuid.UUID) Task {
	t.RunID = id
	return t
}

// Status values for TaskResult.
const (
	StatusSetupFailure = 0
	StatusCompleted    = 1
)

// Error-message vocabulary for TaskResult.ErrorMsg. Besides these fixed
// strings, the Supervisor also reports "child terminated before execv()
// with signal <NAME>" and "terminated by signal: <NAME>".
const (
	ErrNone               = "NONE"
	ErrNZEC               = "NZEC"
	ErrTLE                = "TLE"
	ErrMLE                = "MLE"
	ErrOLE                = "OLE"
	ErrCgroupSetup        = "couldn't setup cgroup"
	ErrChildCreate        = "couldn't create child process"
	ErrChildExitedPreExec = "child exited before execv()"
)

// TaskResult is the verdict produced by a single invocation of
// secure_execute. It is constructed by the Supervisor and owned by the
// caller once returned.
type TaskResult struct {
	Status   int // 0 = setup failure, 1 = guest ran to completion or was terminated
	ExitCode int // guest's exit(2) argument, or -1
	Signal   int // terminating signal number, or 0/-1

	ExecTimeMs   uint64 // CPU time consumed, in milliseconds
	MemoryUsedKB uint64 // peak memory used, in kilobytes

	ErrorMsg string
}

// NewSetupFailure returns the setup-failure TaskResult (status 0, exit
// code and signal -1, empty error message) used as a starting
// point before any setup step has run, per the Sandbox Entry's
// initialization step.
func NewSetupFailure() TaskResult {
	return TaskResult{
		Status:   StatusSetupFailure,
		ExitCode: -1,
		Signal:   -1,
	}
}

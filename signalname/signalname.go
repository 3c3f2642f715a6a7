// Package signalname provides a human-readable name for a terminating
// signal number, for the Supervisor's "terminated by signal: <NAME>"
// diagnostic. It is a static lookup table, not part of the sandboxed-launch
// core itself — the core only consults it.
package signalname

import "fmt"

// names mirrors the POSIX real-time-agnostic signal numbers 0-31 on Linux.
var names = [32]string{
	0:  "UNKNOWN",
	1:  "SIGHUP",
	2:  "SIGINT",
	3:  "SIGQUIT",
	4:  "SIGILL",
	5:  "SIGTRAP",
	6:  "SIGABRT",
	7:  "SIGBUS",
	8:  "SIGFPE",
	9:  "SIGKILL",
	10: "SIGUSR1",
	11: "SIGSEGV",
	12: "SIGUSR2",
	13: "SIGPIPE",
	14: "SIGALRM",
	15: "SIGTERM",
	16: "SIGSTKFLT",
	17: "SIGCHLD",
	18: "SIGCONT",
	19: "SIGSTOP",
	20: "SIGTSTP",
	21: "SIGTTIN",
	22: "SIGTTOU",
	23: "SIGURG",
	24: "SIGXCPU",
	25: "SIGXFSZ",
	26: "SIGVTALRM",
	27: "SIGPROF",
	28: "SIGWINCH",
	29: "SIGIO",
	30: "SIGPWR",
	31: "SIGSYS",
}

// Of returns the human-readable name of signal sig, or a numeric fallback
// for anything outside the known table (e.g. real-time signals).
func Of(sig int) string {
	if sig >= 0 && sig < len(names) && names[sig] != "" {
		return names[sig]
	}
	return fmt.Sprintf("SIG%d", sig)
}

//go:build linux

package launcher

import (
	"fmt"

	"github.com/dsinha-oss/judgebox/task"
)

// baselineEnv is the environment used when a Task specifies none. Guests
// never inherit the supervisor's environment by accident.
var baselineEnv = []task.EnvVar{
	{Key: "PATH", Val: "/usr/bin:/bin"},
	{Key: "HOME", Val: "/tmp"},
	{Key: "LANG", Val: "C.UTF-8"},
}

// buildEnv converts a Task's environment (or the baseline, if empty) into
// a KEY=VALUE string slice suitable for exec.
func buildEnv(env []task.EnvVar) []string {
	if len(env) == 0 {
		env = baselineEnv
	}
	out := make([]string, 0, len(env))
	for _, e := range env {
		out = append(out, fmt.Sprintf("%s=%s", e.Key, e.Val))
	}
	return out
}

//go:build linux

package options

import (
	"fmt"
	"strings"

	"github.com/dsinha-oss/judgebox/task"
)

/**
 * Parse an environment variable specification string.
 * @param kv the environment variable specification (KEY=VALUE)
 * @return the parsed EnvVar and error if any
 */
func ParseEnv(kv string) (task.EnvVar, error) {
	k, v, ok := strings.Cut(kv, "=")

	if !ok || k == "" {
		return task.EnvVar{}, fmt.Errorf("bad --env %q (KEY=VALUE)", kv)
	}
	return task.EnvVar{Key: k, Val: v}, nil
}

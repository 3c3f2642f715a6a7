//go:build linux

package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsinha-oss/judgebox/task"
)

func TestBuildEnvUsesBaselineWhenTaskEnvEmpty(t *testing.T) {
	got := buildEnv(nil)

	assert.ElementsMatch(t, []string{"PATH=/usr/bin:/bin", "HOME=/tmp", "LANG=C.UTF-8"}, got)
}

func TestBuildEnvUsesTaskEnvWhenPresent(t *testing.T) {
	got := buildEnv([]task.EnvVar{{Key: "FOO", Val: "bar"}})

	assert.Equal(t, []string{"FOO=bar"}, got)
}

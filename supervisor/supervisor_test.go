//go:build linux

package supervisor

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsinha-oss/judgebox/cgroup"
	"github.com/dsinha-oss/judgebox/task"
)

func fakeHandle(t *testing.T) (*cgroup.Controller, *cgroup.Handle) {
	t.Helper()
	ctrl := cgroup.NewController("/sys/fs/cgroup", cgroup.DefaultLimits())
	return ctrl, &cgroup.Handle{Path: t.TempDir()}
}

func TestSuperviseReportsChildExitedBeforeExec(t *testing.T) {
	ctrl, h := fakeHandle(t)

	cmd := exec.Command("/bin/true")
	require.NoError(t, cmd.Start())

	result := Supervise(ctrl, h, cmd.Process.Pid, task.Task{MaxCPUTime: 1})

	assert.Equal(t, task.ErrChildExitedPreExec, result.ErrorMsg)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 0, result.Signal)
}

func TestSuperviseReportsChildSignaledBeforeExec(t *testing.T) {
	ctrl, h := fakeHandle(t)

	cmd := exec.Command("/bin/sh", "-c", "kill -9 $$")
	require.NoError(t, cmd.Start())

	result := Supervise(ctrl, h, cmd.Process.Pid, task.Task{MaxCPUTime: 1})

	assert.Equal(t, task.ErrChildExitedPreExec, result.ErrorMsg)
	assert.Equal(t, -1, result.ExitCode)
	assert.NotZero(t, result.Signal)
}

func TestSuperviseHandlesAlreadyReapedPid(t *testing.T) {
	ctrl, h := fakeHandle(t)

	cmd := exec.Command("/bin/true")
	require.NoError(t, cmd.Start())
	require.NoError(t, cmd.Wait())

	result := Supervise(ctrl, h, cmd.Process.Pid, task.Task{MaxCPUTime: 1})

	assert.Equal(t, task.ErrChildExitedPreExec, result.ErrorMsg)
}

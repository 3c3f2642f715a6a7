//go:build linux

package cgroup

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsinha-oss/judgebox/task"
)

func TestProvisionFailsWhenMountMissing(t *testing.T) {
	ctrl := NewController(filepath.Join(t.TempDir(), "does-not-exist"), DefaultLimits())

	_, err := ctrl.Provision(filepath.Join(t.TempDir(), "slot-0"), task.Task{})

	assert.Error(t, err)
}

func TestEnableSubtreeControllersFailsWhenMountMissing(t *testing.T) {
	ctrl := NewController(filepath.Join(t.TempDir(), "does-not-exist"), DefaultLimits())

	err := ctrl.EnableSubtreeControllers(t.TempDir())

	assert.Error(t, err)
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()

	assert.Equal(t, uint64(DefaultHardMemoryCap), l.HardMemoryCap)
	assert.Equal(t, uint64(DefaultHardPidsCap), l.HardPidsCap)
}

func TestHandleCloseIsSafeOnNilFile(t *testing.T) {
	h := &Handle{Path: "/tmp/unused"}
	assert.NoError(t, h.Close())

	var nilHandle *Handle
	assert.NoError(t, nilHandle.Close())
}

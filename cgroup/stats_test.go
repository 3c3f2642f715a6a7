//go:build linux

package cgroup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCPUUsageUsecParsesKeyedField(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cpu.stat", "usage_usec 123456\nuser_usec 100000\nsystem_usec 23456\n")

	ctrl := NewController("/sys/fs/cgroup", DefaultLimits())
	h := &Handle{Path: dir}

	assert.Equal(t, uint64(123456), ctrl.CPUUsageUsec(h))
}

func TestCurrentMemoryBytesBestEffortOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	ctrl := NewController("/sys/fs/cgroup", DefaultLimits())
	h := &Handle{Path: dir}

	assert.Equal(t, uint64(0), ctrl.CurrentMemoryBytes(h))
}

func TestMemoryEventsParsesAllSixFields(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "memory.events", "low 1\nhigh 2\nmax 3\noom 4\noom_kill 5\noom_group_kill 6\n")

	ctrl := NewController("/sys/fs/cgroup", DefaultLimits())
	h := &Handle{Path: dir}

	got := ctrl.MemoryEvents(h)
	assert.Equal(t, MemoryEvents{Low: 1, High: 2, Max: 3, OOM: 4, OOMKill: 5, OOMGroupKill: 6}, got)
}

func TestParsePidsBoundsToLimit(t *testing.T) {
	got := parsePids("1 2 3 4 5", 3)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestParsePidsSkipsMalformedEntries(t *testing.T) {
	got := parsePids("1 notapid 3", 10)
	assert.Equal(t, []int{1, 3}, got)
}

func TestParseUintTreatsMaxAndEmptyAsZero(t *testing.T) {
	assert.Equal(t, uint64(0), parseUint("max"))
	assert.Equal(t, uint64(0), parseUint(""))
	assert.Equal(t, uint64(42), parseUint("42"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, uint64(10), clamp(10, 20))
	assert.Equal(t, uint64(20), clamp(30, 20))
	assert.Equal(t, uint64(30), clamp(30, 0), "a zero cap means uncapped")
}

//go:build linux

package cgroup

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, n int) *Pool {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pool.db")
	p, err := NewPool(dbPath, "/sys/fs/cgroup/judgebox", n)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestLeaseAssignsDistinctSlots(t *testing.T) {
	p := newTestPool(t, 2)

	slotA, dirA, err := p.Lease(uuid.New())
	require.NoError(t, err)
	slotB, dirB, err := p.Lease(uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, slotA, slotB)
	assert.NotEqual(t, dirA, dirB)
	assert.Equal(t, "/sys/fs/cgroup/judgebox/"+slotA, dirA)
}

func TestLeaseFailsWhenPoolExhausted(t *testing.T) {
	p := newTestPool(t, 1)

	_, _, err := p.Lease(uuid.New())
	require.NoError(t, err)

	_, _, err = p.Lease(uuid.New())
	assert.Error(t, err)
}

func TestReleaseFreesSlotForReuse(t *testing.T) {
	p := newTestPool(t, 1)

	slot, _, err := p.Lease(uuid.New())
	require.NoError(t, err)
	require.NoError(t, p.Release(slot))

	reused, _, err := p.Lease(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, slot, reused)
}

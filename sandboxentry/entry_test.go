//go:build linux

package sandboxentry

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsinha-oss/judgebox/cgroup"
	"github.com/dsinha-oss/judgebox/task"
)

func TestSecureExecuteReportsCgroupSetupFailureWhenPoolExhausted(t *testing.T) {
	ctrl := cgroup.NewController("/sys/fs/cgroup", cgroup.DefaultLimits())
	pool, err := cgroup.NewPool(filepath.Join(t.TempDir(), "pool.db"), filepath.Join(t.TempDir(), "judgebox"), 0)
	require.NoError(t, err)
	defer pool.Close()

	log := slog.New(slog.DiscardHandler)
	entry := New(ctrl, pool, log)

	result := entry.SecureExecute(context.Background(), task.Task{ExecPath: "/bin/true", Args: []string{"/bin/true"}})

	assert.Equal(t, task.StatusSetupFailure, result.Status)
	assert.Equal(t, task.ErrCgroupSetup, result.ErrorMsg)
}

func TestCloneArgsMatchesClone3ABILayout(t *testing.T) {
	// struct clone_args is eleven consecutive __aligned_u64 fields; this
	// guards against an accidental field reorder breaking the raw
	// clone3(2) call.
	assert.Equal(t, uintptr(11*8), unsafe.Sizeof(cloneArgs{}))
}

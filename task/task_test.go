package task

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewSetupFailure(t *testing.T) {
	r := NewSetupFailure()

	assert.Equal(t, StatusSetupFailure, r.Status)
	assert.Equal(t, -1, r.ExitCode)
	assert.Equal(t, -1, r.Signal)
	assert.Empty(t, r.ErrorMsg)
}

func TestWithRunIDDoesNotMutateOriginal(t *testing.T) {
	base := Task{ExecPath: "/bin/true"}
	id := uuid.New()

	derived := base.WithRunID(id)

	assert.Equal(t, uuid.Nil, base.RunID, "WithRunID must not mutate the receiver")
	assert.Equal(t, id, derived.RunID)
	assert.Equal(t, base.ExecPath, derived.ExecPath)
}

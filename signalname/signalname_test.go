package signalname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfKnownSignals(t *testing.T) {
	assert.Equal(t, "SIGKILL", Of(9))
	assert.Equal(t, "SIGSEGV", Of(11))
	assert.Equal(t, "SIGXCPU", Of(24))
	assert.Equal(t, "SIGXFSZ", Of(25))
}

func TestOfUnknownSignalFallsBackToNumeric(t *testing.T) {
	assert.Equal(t, "SIG64", Of(64))
	assert.Equal(t, "SIG-1", Of(-1))
}

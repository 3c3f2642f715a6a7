package runid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReturnsUniqueIdentities(t *testing.T) {
	a := New()
	b := New()

	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a.String())
}

func TestAliasIsNonEmpty(t *testing.T) {
	assert.NotEmpty(t, Alias())
}

// Package runid assigns each sandboxed-launch invocation a stable
// identifier (recorded in its cgroup slot lease) and a friendly alias
// (used only for log correlation).
package runid

import (
	"time"

	"github.com/google/uuid"
	"github.com/goombaio/namegenerator"
)

// generator is seeded once at process start; the friendly aliases it
// produces are a cosmetic log aid, not part of any verdict or lease key.
var generator = namegenerator.NewNameGenerator(time.Now().UTC().UnixNano())

// New returns a fresh UUID for a single invocation.
func New() uuid.UUID {
	return uuid.New()
}

// Alias returns a human-friendly name for log lines, analogous to the
// hostname microbox generates per sandbox.
func Alias() string {
	return generator.Generate()
}

//go:build linux

package options

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsinha-oss/judgebox/logger"
)

func TestParseEnvRejectsMissingEquals(t *testing.T) {
	_, err := ParseEnv("NOEQUALS")
	assert.Error(t, err)
}

func TestParseEnvRejectsEmptyKey(t *testing.T) {
	_, err := ParseEnv("=value")
	assert.Error(t, err)
}

func TestParseEnvSplitsOnFirstEquals(t *testing.T) {
	ev, err := ParseEnv("FOO=bar=baz")
	assert.NoError(t, err)
	assert.Equal(t, "FOO", ev.Key)
	assert.Equal(t, "bar=baz", ev.Val)
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := parseLogLevel("warn")
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = parseLogLevel("bogus")
	assert.Error(t, err)
}

func TestParseLogFormat(t *testing.T) {
	f, err := parseLogFormat("json")
	assert.NoError(t, err)
	assert.Equal(t, logger.LogJSON, f)

	_, err = parseLogFormat("bogus")
	assert.Error(t, err)
}

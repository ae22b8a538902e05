package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToProdInfo(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNewDevDefaultsToDebug(t *testing.T) {
	log, err := New(Config{Env: "dev"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "shout"})
	assert.Error(t, err)
}

package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triviafetch/pkg/config"
)

func TestNew(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.NotNil(t, log.GetZerolog())
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "shouting"})
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", "fatal", "disabled", "INFO"} {
		_, err := parseLogLevel(level)
		assert.NoError(t, err, "level %q", level)
	}

	_, err := parseLogLevel("nope")
	assert.Error(t, err)
}

func TestTestLoggerCapturesMessages(t *testing.T) {
	log := NewTestLogger()

	log.Info("starting up")
	log.WarnWithFields("slow response", map[string]interface{}{"ms": 5100})

	messages := log.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "INFO", messages[0].Level)
	assert.Equal(t, 5100, messages[1].Fields["ms"])
	assert.True(t, log.HasMessage("WARN", "slow"))
	assert.False(t, log.HasMessage("ERROR", "slow"))
}

func TestTestLoggerChildrenShareStore(t *testing.T) {
	log := NewTestLogger()

	child := log.WithField("category_id", 9).WithError(errors.New("boom"))
	child.Error("category failed")

	require.Len(t, log.Messages(), 1)
	msg := log.Messages()[0]
	assert.Equal(t, 9, msg.Fields["category_id"])
	assert.NotNil(t, msg.Fields["error"])
	assert.Empty(t, log.Messages()[0].Fields["missing"])

	log.Reset()
	assert.Empty(t, log.Messages())
}

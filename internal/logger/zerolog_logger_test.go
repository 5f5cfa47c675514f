package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()

	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"k": "v"})
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	t.Run("Structured fields and component", func(t *testing.T) {
		//** Arrange
		var buffer bytes.Buffer
		l := NewZerologLoggerTo(&buffer, "engine")

		//** Act
		l.Infow("solve finished", map[string]any{"status": "solved", "steps": 12})

		//** Assert
		var line map[string]any
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))
		assert.Equal(t, "engine", line["component"])
		assert.Equal(t, "info", line["level"])
		assert.Equal(t, "solved", line["status"])
		assert.EqualValues(t, 12, line["steps"])
		assert.Equal(t, "solve finished", line["message"])
	})

	t.Run("Level filter", func(t *testing.T) {
		//** Arrange
		var buffer bytes.Buffer
		l := NewZerologLoggerTo(&buffer, "store")
		require.NoError(t, SetLevel("WARN"))

		//** Act
		l.Infof("hidden")
		l.Warnf("shown")

		//** Assert
		lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "shown")
	})

	t.Run("Unknown level", func(t *testing.T) {
		//** Act
		err := SetLevel("loud")

		//** Assert
		assert.Error(t, err)
	})
}

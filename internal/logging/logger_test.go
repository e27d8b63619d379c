package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel("Error"))
	assert.Equal(t, LevelInfo, ParseLevel("unknown"))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "FATAL", LevelFatal.String())
}

func TestWithComponentDerivesStampedLogger(t *testing.T) {
	base := New(LevelInfo, "text").(*StructuredLogger)
	derived := base.WithComponent("memorycore").(*StructuredLogger)

	assert.Equal(t, "memorycore", derived.component)
	assert.Empty(t, base.component)
}

func TestNoOpLoggerSatisfiesInterface(t *testing.T) {
	var l Logger = NewNoOpLogger()
	l.Info("discarded")
	assert.Equal(t, l, l.WithComponent("x"))
}

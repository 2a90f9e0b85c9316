package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtLeastDropsLowerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := AtLeast(NewWriterLogger(&buf, DebugLevel), WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("kept")
	logger.Error(errors.New("boom"), "failed")

	assert.Equal(t, "[WARN] kept\n[ERROR] failed: boom\n", buf.String())
}

func TestAtLeastCannotLowerWrappedLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := AtLeast(NewWriterLogger(&buf, ErrorLevel), DebugLevel)

	logger.Info("still hidden")
	assert.Empty(t, buf.String())
}

func TestAtLeastLeavesWrappedLoggerAlone(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriterLogger(&buf, DebugLevel)
	filtered := AtLeast(base, ErrorLevel).WithFields(Fields{"component": "stft"})

	filtered.Debug("hidden")
	base.Debug("shown")
	filtered.SetLevel(DebugLevel)
	filtered.Debug("now shown")

	assert.Equal(t, "[DEBUG] shown\n[DEBUG] now shown component=stft\n", buf.String())
}

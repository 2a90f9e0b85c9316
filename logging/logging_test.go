package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		" warn ":  WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"Fatal":   FatalLevel,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestWriterLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown", Fields{"frames": 12})

	assert.Equal(t, "[WARN] shown frames=12\n", buf.String())
}

func TestWriterLoggerMergesFieldsInKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, DebugLevel).WithFields(Fields{"component": "stft"})

	logger.Error(errors.New("boom"), "failed", Fields{"bins": 1025})

	assert.Equal(t, "[ERROR] failed: boom bins=1025 component=stft\n", buf.String())
}

func TestWithContextPicksUpFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithFields(context.Background(), Fields{"run_id": "abc"})
	NewWriterLogger(&buf, InfoLevel).WithContext(ctx).Info("started")

	assert.Equal(t, "[INFO] started run_id=abc\n", buf.String())
}

func TestOrGlobalPrefersGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := OrGlobal(NewWriterLogger(&buf, InfoLevel), Fields{"component": "key"})
	logger.Info("estimated")

	assert.Equal(t, "[INFO] estimated component=key\n", buf.String())
}

func TestSetGlobalLoggerNilFallsBackToNoOp(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}

func TestDerivedLoggersShareLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWriterLogger(&buf, InfoLevel)
	child := parent.WithFields(Fields{"component": "onset"})

	child.Debug("hidden")
	parent.SetLevel(DebugLevel)
	child.Debug("peaks", Fields{"count": 3})

	assert.Equal(t, "[DEBUG] peaks component=onset count=3\n", buf.String())
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWriterLogger(&buf, InfoLevel)
	_ = parent.WithFields(Fields{"run_id": "x"})

	parent.Info("plain")
	assert.Equal(t, "[INFO] plain\n", buf.String())
}

func TestConcurrentWritesStayOnePerLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, InfoLevel)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.WithFields(Fields{"job": i}).Info("done")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 32)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "[INFO] done job="), line)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "WARN", WarnLevel.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

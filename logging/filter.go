package logging

import (
	"context"
	"sync/atomic"
)

// levelFilter drops entries below its own minimum before they reach the
// wrapped logger. The wrapped logger's level is left alone, so a filter can
// raise the threshold for one component without touching a shared logger.
type levelFilter struct {
	next  Logger
	level *atomic.Int32
}

// AtLeast returns a logger that forwards only entries at level or above.
// It can only raise the threshold of logger, never lower it.
func AtLeast(logger Logger, level Level) Logger {
	if logger == nil {
		logger = GetGlobalLogger()
	}
	f := &levelFilter{next: logger, level: new(atomic.Int32)}
	f.level.Store(int32(level))
	return f
}

func (f *levelFilter) enabled(level Level) bool {
	return level >= Level(f.level.Load())
}

func (f *levelFilter) Debug(msg string, fields ...Fields) {
	if f.enabled(DebugLevel) {
		f.next.Debug(msg, fields...)
	}
}

func (f *levelFilter) Info(msg string, fields ...Fields) {
	if f.enabled(InfoLevel) {
		f.next.Info(msg, fields...)
	}
}

func (f *levelFilter) Warn(msg string, fields ...Fields) {
	if f.enabled(WarnLevel) {
		f.next.Warn(msg, fields...)
	}
}

func (f *levelFilter) Error(err error, msg string, fields ...Fields) {
	if f.enabled(ErrorLevel) {
		f.next.Error(err, msg, fields...)
	}
}

// Fatal is never filtered
func (f *levelFilter) Fatal(err error, msg string, fields ...Fields) {
	f.next.Fatal(err, msg, fields...)
}

func (f *levelFilter) WithFields(fields Fields) Logger {
	return &levelFilter{next: f.next.WithFields(fields), level: f.level}
}

func (f *levelFilter) WithContext(ctx context.Context) Logger {
	return &levelFilter{next: f.next.WithContext(ctx), level: f.level}
}

// SetLevel moves the filter threshold only
func (f *levelFilter) SetLevel(level Level) {
	f.level.Store(int32(level))
}

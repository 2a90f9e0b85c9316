package logging

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

const timestampLayout = "2006/01/02 15:04:05"

func (l Level) color() string {
	switch l {
	case WarnLevel:
		return colorYellow
	case ErrorLevel:
		return colorRed
	case FatalLevel:
		return colorBold + colorRed
	default:
		return ""
	}
}

// sink is the output shared by a logger and everything derived from it.
// Writes are serialized so lines from concurrent transcriptions never
// interleave.
type sink struct {
	mu         sync.Mutex
	out        io.Writer // debug, info
	err        io.Writer // warn and above
	timestamps bool
	colors     bool
	exit       func(code int)
}

func (s *sink) write(level Level, line string) {
	w := s.out
	if level >= WarnLevel {
		w = s.err
	}

	if s.colors {
		if c := level.color(); c != "" {
			line = c + line + colorReset
		}
	}
	if s.timestamps {
		line = time.Now().Format(timestampLayout) + " " + line
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(w, line+"\n")
}

// DefaultLogger writes one line per entry: debug and info to stdout, warn
// and above to stderr, colored when stdout is a terminal. Loggers derived
// with WithFields share the parent's output and level.
type DefaultLogger struct {
	sink   *sink
	level  *atomic.Int32
	fields Fields
}

// NewDefaultLogger creates the stdout/stderr logger at InfoLevel
func NewDefaultLogger() *DefaultLogger {
	return newDefaultLogger(&sink{
		out:        os.Stdout,
		err:        os.Stderr,
		timestamps: true,
		colors:     isTerminal(),
		exit:       os.Exit,
	}, InfoLevel)
}

// NewWriterLogger creates an uncolored logger that writes every level to w.
// Timestamps are omitted so output is stable, and Fatal does not exit.
func NewWriterLogger(w io.Writer, level Level) *DefaultLogger {
	return newDefaultLogger(&sink{out: w, err: w, exit: func(int) {}}, level)
}

func newDefaultLogger(s *sink, level Level) *DefaultLogger {
	d := &DefaultLogger{sink: s, level: new(atomic.Int32), fields: Fields{}}
	d.level.Store(int32(level))
	return d
}

func isTerminal() bool {
	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// format renders "[LEVEL] msg: err k=v ..." with keys sorted
func (d *DefaultLogger) format(level Level, err error, msg string, fields []Fields) string {
	all := maps.Clone(d.fields)
	for _, f := range fields {
		maps.Copy(all, f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	for _, k := range slices.Sorted(maps.Keys(all)) {
		fmt.Fprintf(&b, " %s=%v", k, all[k])
	}
	return b.String()
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields []Fields) {
	if level < Level(d.level.Load()) {
		return
	}

	d.sink.write(level, d.format(level, err, msg, fields))
	if level == FatalLevel {
		d.sink.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	merged := maps.Clone(d.fields)
	maps.Copy(merged, fields)
	return &DefaultLogger{sink: d.sink, level: d.level, fields: merged}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

// SetLevel changes the level of this logger and of every logger sharing it
func (d *DefaultLogger) SetLevel(level Level) {
	d.level.Store(int32(level))
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}

// Package audit provides the run audit log: timestamped event lines appended
// to a file beside the output and echoed to the console.
package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp prefix of every audit line.
const TimeLayout = "[2006-01-02 15:04:05]"

// Kind classifies an audit event.
type Kind int

const (
	Start Kind = iota
	Rejection
	Summary
	Files
	Fatal
)

// Event is a single audit line.
type Event struct {
	Kind    Kind
	Message string
}

// Recorder accepts audit events.
type Recorder interface {
	Record(e Event)
}

// Nop returns a Recorder that discards everything.
func Nop() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) Record(Event) {}

// Log is a zap-backed Recorder.
type Log struct {
	logger *zap.Logger
	file   *os.File
	path   string
}

// New wraps an existing logger. Close only syncs it.
func New(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// LogPath returns the audit log path for an output file: the same base
// name with a .log extension.
func LogPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

// EncoderConfig returns the console encoding used for audit lines:
// timestamp, then message.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:    "ts",
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format(TimeLayout))
		},
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// Open opens (appending) the log file at path and echoes every line to echo
// when it is non-nil.
func Open(path string, echo io.Writer, opts ...zap.Option) (*Log, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	enc := zapcore.NewConsoleEncoder(EncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.InfoLevel),
	}
	if echo != nil {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.AddSync(echo), zapcore.InfoLevel))
	}

	return &Log{
		logger: zap.New(zapcore.NewTee(cores...), opts...),
		file:   f,
		path:   path,
	}, nil
}

// Record writes e as one line. Fatal events are logged at error level.
func (l *Log) Record(e Event) {
	if e.Kind == Fatal {
		l.logger.Error(e.Message)
		return
	}
	l.logger.Info(e.Message)
}

// Path returns the log file path, or "" for a wrapped logger.
func (l *Log) Path() string {
	return l.path
}

// Close flushes the log and closes its file.
func (l *Log) Close() error {
	// Sync on a console/pipe writer can return EINVAL; the file is synced below.
	_ = l.logger.Sync()
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return fmt.Errorf("sync audit log: %w", err)
	}
	return l.file.Close()
}

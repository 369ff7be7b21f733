// Package logging builds the diagnostic zap logger.
// Diagnostics go to a file; the terminal is raw and belongs to the line editor.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FileName   = "fillmem.log"
	MaxLogSize = 10 * 1024 * 1024
)

// Options selects where and how much to log
type Options struct {
	Debug bool
	Level string
	Dir   string
}

// Logger is the process logger plus the file behind it
type Logger struct {
	*zap.Logger
	SessionID string
	Path      string

	file *os.File
}

// Setup returns a Nop logger unless debug is set; otherwise a file logger under Dir
func Setup(opts Options) (*Logger, error) {
	sid := uuid.NewString()
	if !opts.Debug {
		return &Logger{Logger: zap.NewNop(), SessionID: sid}, nil
	}

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	dir := opts.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := rotate(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encoder := zapcore.NewConsoleEncoder(encCfg)
	if level > zapcore.DebugLevel {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(f), level)
	logger := zap.New(core, zap.AddCaller()).With(zap.String("session", sid))

	return &Logger{Logger: logger, SessionID: sid, Path: path, file: f}, nil
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	l.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// rotate moves an oversized log aside, replacing any previous backup
func rotate(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= MaxLogSize {
		return nil
	}
	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("log rotate: %w", err)
	}
	return nil
}

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Options configures the process logger.
type Options struct {
	Level    string
	FilePath string
	Name     string
}

// New builds the process-wide logger. Every entry goes to both the log file
// and stdout. The returned logger is also installed as the zap global.
func New(opts Options) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}

	if dir := filepath.Dir(opts.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("could not create log dir: %w", err)
		}
	}
	file, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open log file: %w", err)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(newEncoder(), zapcore.AddSync(file), level),
		zapcore.NewCore(newEncoder(), zapcore.Lock(os.Stdout), level),
	)

	logger := zap.New(core)
	if opts.Name != "" {
		logger = logger.Named(opts.Name)
	}
	restore := zap.ReplaceGlobals(logger)

	cleanup := func() {
		_ = logger.Sync()
		restore()
		file.Close()
	}
	return logger, cleanup, nil
}

// newEncoder renders "time - name - LEVEL - message - {fields}".
func newEncoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		NameKey:          "logger",
		MessageKey:       "message",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
	return nameFirstEncoder{zapcore.NewConsoleEncoder(cfg)}
}

// nameFirstEncoder writes the level after the logger name. The console
// encoder on its own always puts the level first.
type nameFirstEncoder struct {
	zapcore.Encoder
}

func (e nameFirstEncoder) Clone() zapcore.Encoder {
	return nameFirstEncoder{e.Encoder.Clone()}
}

func (e nameFirstEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	label := ent.Level.CapitalString()
	if ent.LoggerName != "" {
		label = ent.LoggerName + " - " + label
	}
	ent.LoggerName = label
	return e.Encoder.EncodeEntry(ent, fields)
}

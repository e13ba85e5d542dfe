package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/darwinyusef/termsim/pkg/termsim"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ZapLogger adapts a zap.SugaredLogger. Verbose maps to debug level.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// NewJSONLogger writes JSON entries to w at the given level.
func NewJSONLogger(w io.Writer, level zapcore.Level) *ZapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)
	return NewZapLogger(zap.New(core, zap.AddCaller()))
}

func (l *ZapLogger) Verbose(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *ZapLogger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *ZapLogger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// New builds the logger for format ("text" or "json") and level ("verbose",
// "debug", "info" or "error"). An explicit verbose flag wins over level.
func New(format, level string, verbose bool, w io.Writer) (termsim.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	switch strings.ToLower(format) {
	case "", FormatText:
		return NewWriterLogger(w, lvl == zapcore.DebugLevel), nil
	case FormatJSON:
		return NewJSONLogger(w, lvl), nil
	default:
		return nil, fmt.Errorf("%w: log format %q (want text or json)", termsim.ErrInvalidConfig, format)
	}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "verbose", "debug":
		return zapcore.DebugLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("%w: log level %q (want verbose, info or error)", termsim.ErrInvalidConfig, level)
	}
}

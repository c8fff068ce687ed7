package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so callers can attach structured fields.
type Logger struct {
	*zap.Logger
}

var (
	mu     sync.RWMutex
	global = New("info", false, os.Stderr)
	sugar  = global.WithOptions(zap.AddCallerSkip(1)).Sugar()
)

// ParseLevel maps a config string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	var ec zapcore.EncoderConfig
	if development {
		ec = zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec = zap.NewProductionEncoderConfig()
		ec.TimeKey = "timestamp"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.MessageKey = "message"
		ec.LevelKey = "level"
		ec.CallerKey = "caller"
	}
	ec.EncodeDuration = zapcore.StringDurationEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	return ec
}

func options(development bool) []zap.Option {
	opts := []zap.Option{zap.AddCaller()}
	if development {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return opts
}

// Init replaces the global logger. outputPaths default to stdout; the
// analyze command passes "stderr" so its JSON result stays clean.
func Init(level string, development bool, outputPaths ...string) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.EncoderConfig = encoderConfig(development)
	cfg.OutputPaths = []string{"stdout"}
	if len(outputPaths) > 0 {
		cfg.OutputPaths = outputPaths
	}

	l, err := cfg.Build(options(development)...)
	if err != nil {
		return err
	}
	Replace(&Logger{Logger: l})
	return nil
}

// New builds a logger that writes to w. Tests use it with a bytes.Buffer.
func New(level string, development bool, w io.Writer) *Logger {
	var enc zapcore.Encoder
	if development {
		enc = zapcore.NewConsoleEncoder(encoderConfig(true))
	} else {
		enc = zapcore.NewJSONEncoder(encoderConfig(false))
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(ParseLevel(level)))
	return &Logger{Logger: zap.New(core, options(development)...)}
}

// Replace swaps the global logger and returns a func that restores the old one.
func Replace(l *Logger) func() {
	if l == nil {
		l = &Logger{Logger: zap.NewNop()}
	}
	mu.Lock()
	prev := global
	global = l
	sugar = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
	mu.Unlock()
	return func() { Replace(prev) }
}

// L returns the global logger. Before Init it writes info and above to stderr.
func L() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

func s() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, args ...interface{}) { s().Debugf(format, args...) }

func Infof(format string, args ...interface{}) { s().Infof(format, args...) }

func Warnf(format string, args ...interface{}) { s().Warnf(format, args...) }

func Errorf(format string, args ...interface{}) { s().Errorf(format, args...) }

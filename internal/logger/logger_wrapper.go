package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of Uber's zap.
type ZapLogger struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	level   zap.AtomicLevel
	encoder zapcore.EncoderConfig
	console bool
	closer  func()
}

// NewZapLogger creates a JSON logger writing to stderr at info level.
func NewZapLogger() contracts.Logger {
	return newZapLogger(zap.NewProductionEncoderConfig(), false)
}

// NewStandardLogger creates a human readable console logger writing to stderr.
func NewStandardLogger() contracts.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return newZapLogger(cfg, true)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() contracts.Logger {
	return &ZapLogger{logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

func newZapLogger(enc zapcore.EncoderConfig, console bool) *ZapLogger {
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	z := &ZapLogger{
		level:   zap.NewAtomicLevelAt(zapcore.InfoLevel),
		encoder: enc,
		console: console,
	}
	z.logger = z.build(zapcore.Lock(os.Stderr))
	return z
}

func (z *ZapLogger) build(sink zapcore.WriteSyncer) *zap.Logger {
	var encoder zapcore.Encoder
	if z.console {
		encoder = zapcore.NewConsoleEncoder(z.encoder)
	} else {
		encoder = zapcore.NewJSONEncoder(z.encoder)
	}
	core := zapcore.NewCore(encoder, sink, z.level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.current().Info(msg, toZap(fields)...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.current().Error(msg, toZap(fields)...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.current().Debug(msg, toZap(fields)...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.current().Warn(msg, toZap(fields)...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.current().Fatal(msg, toZap(fields)...)
}

// Field returns a field builder.
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel changes the minimum level at runtime.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(zapLevel(level))
}

// SetDestination redirects output. FileLog requires a path and appends to it.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	var (
		sink      zapcore.WriteSyncer
		closeSink func()
	)
	switch dest {
	case contracts.FileLog:
		if len(filePath) == 0 || filePath[0] == "" {
			z.Warn("file log destination requires a path; keeping current destination")
			return
		}
		ws, closeFn, err := zap.Open(filePath[0])
		if err != nil {
			z.Error("failed to open log file", z.Field().String("path", filePath[0]), z.Field().Error("error", err))
			return
		}
		sink, closeSink = ws, closeFn
	default:
		sink = zapcore.Lock(os.Stderr)
	}

	z.mu.Lock()
	prev := z.closer
	if z.logger != nil {
		_ = z.logger.Sync()
	}
	z.logger = z.build(sink)
	z.closer = closeSink
	z.mu.Unlock()

	if prev != nil {
		prev()
	}
}

func (z *ZapLogger) current() *zap.Logger {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.logger
}

// zapLevel maps the contract levels, whose iota order differs from zap's, to zapcore levels.
func zapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZap(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if f, ok := field.(zapField); ok && f.set {
			out = append(out, f.field)
		}
	}
	return out
}

// zapField implements contracts.Field
type zapField struct {
	field zap.Field
	set   bool
}

func wrap(f zap.Field) contracts.Field { return zapField{field: f, set: true} }

func (zapField) Bool(key string, val bool) contracts.Field { return wrap(zap.Bool(key, val)) }

func (zapField) Int(key string, val int) contracts.Field { return wrap(zap.Int(key, val)) }

func (zapField) Float64(key string, val float64) contracts.Field { return wrap(zap.Float64(key, val)) }

func (zapField) String(key string, val string) contracts.Field { return wrap(zap.String(key, val)) }

func (zapField) Time(key string, val time.Time) contracts.Field { return wrap(zap.Time(key, val)) }

func (zapField) Duration(key string, val time.Duration) contracts.Field {
	return wrap(zap.Duration(key, val))
}

func (zapField) Int64(key string, val int64) contracts.Field { return wrap(zap.Int64(key, val)) }

func (zapField) Error(key string, val error) contracts.Field { return wrap(zap.NamedError(key, val)) }

func (zapField) Uint64(key string, val uint64) contracts.Field { return wrap(zap.Uint64(key, val)) }

func (zapField) Uint8(key string, val uint8) contracts.Field { return wrap(zap.Uint8(key, val)) }

// Binary logs bytes as space separated hex, which reads better than base64 for MIDI.
func (zapField) Binary(key string, val []byte) contracts.Field {
	return wrap(zap.String(key, fmt.Sprintf("% X", val)))
}

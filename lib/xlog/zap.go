package xlog

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

var printBanner = sync.Once{}

type xLogger struct {
	logger  atomic.Pointer[zap.Logger]
	lvl     zap.AtomicLevel
	ctxKeys []string
	// Context key => field name. Read only after the logger is built.
	ctxFields map[string]string
	writer    LogOutWriterType
	encoder   LogEncoderType
}

func (l *xLogger) zap() *zap.Logger {
	return l.logger.Load()
}

func (l *xLogger) Named(component string) XLogger {
	child := &xLogger{
		lvl:       l.lvl,
		ctxKeys:   l.ctxKeys,
		ctxFields: l.ctxFields,
		writer:    l.writer,
		encoder:   l.encoder,
	}
	child.logger.Store(l.logger.Load().Named(component))
	return child
}

// IncreaseLogLevel changes the level of the logger and all its
// named children concurrently.
func (l *xLogger) IncreaseLogLevel(level zapcore.Level) {
	l.lvl.SetLevel(level)
}

func (l *xLogger) Level() string {
	return l.lvl.Level().String()
}

func (l *xLogger) Sync() error {
	return l.logger.Load().Sync()
}

func (l *xLogger) Banner(banner Banner) {
	printBanner.Do(func() {
		cfg := zapcore.EncoderConfig{
			MessageKey:    "banner", // Required, but the plain text will be ignored.
			LevelKey:      coreKeyIgnored,
			TimeKey:       coreKeyIgnored,
			CallerKey:     coreKeyIgnored,
			StacktraceKey: coreKeyIgnored,
		}
		core := zapcore.NewCore(getEncoderByType(l.encoder)(cfg), getOutWriterByType(l.writer), zapcore.InfoLevel)
		_l := l.logger.Load().WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core {
			return core
		}))
		switch l.encoder {
		case PlainText:
			_l.Info(banner.PlainText())
		default:
			_l.Info(banner.JSON())
		}
	})
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, fields...)
}

func (l *xLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) ErrorStack(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	if es, ok := err.(infra.ErrorStack); ok && es != nil {
		newFields = append(newFields, zap.Inline(es))
	} else if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, append(l.extractFieldsFromContext(ctx), fields...)...)
}

func (l *xLogger) InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, append(l.extractFieldsFromContext(ctx), fields...)...)
}

func (l *xLogger) WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, append(l.extractFieldsFromContext(ctx), fields...)...)
}

func (l *xLogger) ErrorContext(ctx context.Context, err error, msg string, fields ...zap.Field) {
	newFields := l.extractFieldsFromContext(ctx)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	l.logger.Load().Error(msg, append(newFields, fields...)...)
}

func (l *xLogger) Logf(lvl zapcore.Level, format string, args ...any) {
	l.logger.Load().Log(lvl, fmt.Sprintf(format, args...))
}

func (l *xLogger) extractFieldsFromContext(ctx context.Context) []zap.Field {
	if ctx == nil || len(l.ctxKeys) == 0 {
		return []zap.Field{}
	}
	newFields := make([]zap.Field, 0, len(l.ctxKeys))
	for _, key := range l.ctxKeys {
		mapTo := l.ctxFields[key]
		if mapTo == ContextKeyMapToOmitempty {
			continue
		}
		if v := ctx.Value(key); v != nil {
			newFields = append(newFields, zap.Any(mapTo, v))
		} else {
			newFields = append(newFields, zap.String(mapTo, "nil"))
		}
	}
	return newFields
}

type loggerCfg struct {
	encoderType *LogEncoderType
	writerType  *LogOutWriterType
	lvlEncoder  zapcore.LevelEncoder
	tsEncoder   zapcore.TimeEncoder
	level       *zapcore.Level
	ctxFields   map[string]string
}

func (cfg *loggerCfg) apply(l *xLogger) zapcore.Core {
	l.encoder = JSON
	if cfg.encoderType != nil {
		l.encoder = *cfg.encoderType
	}
	l.writer = StdOut
	if cfg.writerType != nil {
		l.writer = *cfg.writerType
	}
	if cfg.level != nil {
		l.lvl = zap.NewAtomicLevelAt(*cfg.level)
	} else {
		l.lvl = zap.NewAtomicLevelAt(getLogLevelOrDefault(os.Getenv("XLOG_LVL")))
	}
	if cfg.lvlEncoder == nil {
		cfg.lvlEncoder = zapcore.CapitalLevelEncoder
	}
	if cfg.tsEncoder == nil {
		cfg.tsEncoder = zapcore.ISO8601TimeEncoder
	}

	l.ctxFields = cfg.ctxFields
	l.ctxKeys = make([]string, 0, len(cfg.ctxFields))
	for key := range cfg.ctxFields {
		l.ctxKeys = append(l.ctxKeys, key)
	}
	sort.Strings(l.ctxKeys)

	return newConsoleCore(coreConfig{
		lvlEnabler: l.lvl,
		encoder:    l.encoder,
		writer:     l.writer,
		lvlEnc:     cfg.lvlEncoder,
		tsEnc:      cfg.tsEncoder,
	})
}

type XLoggerOption func(*loggerCfg) error

func NewXLogger(opts ...XLoggerOption) XLogger {
	cfg := &loggerCfg{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			panic(err)
		}
	}
	xl := &xLogger{}
	core := cfg.apply(xl)
	// The zap default error stack is disabled.
	xl.logger.Store(zap.New(core, zap.AddCallerSkip(1), zap.AddCaller()))
	return xl
}

// NewNopXLogger discards everything.
func NewNopXLogger() XLogger {
	xl := &xLogger{lvl: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
	xl.logger.Store(zap.NewNop())
	return xl
}

func WithXLoggerStdOutWriter() XLoggerOption {
	return WithXLoggerWriter(StdOut)
}

func WithXLoggerWriter(writer LogOutWriterType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if writer >= _writerMax {
			return infra.NewErrorStack("[XLogger] unknown writer")
		}
		cfg.writerType = &writer
		return nil
	}
}

func WithXLoggerEncoder(logEnc LogEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if logEnc >= _encMax {
			return infra.NewErrorStack("[XLogger] unknown encoder")
		}
		cfg.encoderType = &logEnc
		return nil
	}
}

func WithXLoggerLevel(lvl LogLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		_lvl := lvl.zapLevel()
		cfg.level = &_lvl
		return nil
	}
}

func WithXLoggerLevelEncoder(lvlEnc zapcore.LevelEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if lvlEnc == nil {
			lvlEnc = zapcore.CapitalColorLevelEncoder
		}
		cfg.lvlEncoder = lvlEnc
		return nil
	}
}

func WithXLoggerTimeEncoder(tsEnc zapcore.TimeEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if tsEnc == nil {
			tsEnc = zapcore.ISO8601TimeEncoder
		}
		cfg.tsEncoder = tsEnc
		return nil
	}
}

func WithXLoggerContextFieldExtract(field string, mapTo ...string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if len(field) == 0 {
			return nil
		}
		if cfg.ctxFields == nil {
			cfg.ctxFields = make(map[string]string, 8)
		}
		if len(mapTo) == 0 || mapTo[0] == ContextKeyMapToItself {
			mapTo = []string{field}
		}
		cfg.ctxFields[field] = mapTo[0]
		return nil
	}
}

// ParseLogLevel accepts the level names case-insensitively.
func ParseLogLevel(level string) (LogLevel, error) {
	switch lvl := LogLevel(strings.ToUpper(strings.TrimSpace(level))); lvl {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return lvl, nil
	default:
	}
	return LogLevelDebug, infra.NewErrorStack("[XLogger] unknown log level " + level)
}

func getLogLevelOrDefault(level string) zapcore.Level {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return zapcore.DebugLevel
	}
	return lvl.zapLevel()
}

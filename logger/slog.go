package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dbrec/dbrec/utils"
)

// SlogLogger implements Interface using log/slog
type SlogLogger struct {
	Logger                    *slog.Logger
	LogLevel                  LogLevel
	SlowThreshold             time.Duration
	Parameterized             bool
	IgnoreRecordNotFoundError bool
}

// NewSlogLogger creates a new logger using slog
func NewSlogLogger(logger *slog.Logger, config Config) Interface {
	return &SlogLogger{
		Logger:                    logger,
		LogLevel:                  config.LogLevel,
		SlowThreshold:             config.SlowThreshold,
		Parameterized:             config.ParameterizedQueries,
		IgnoreRecordNotFoundError: config.IgnoreRecordNotFoundError,
	}
}

// NewSlogLoggerWithConfig creates a new slog logger with custom configuration
func NewSlogLoggerWithConfig(config Config, handler ...slog.Handler) Interface {
	var logger *slog.Logger

	if len(handler) > 0 {
		logger = slog.New(handler[0])
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: SlogLevel(config.LogLevel),
		}))
	}

	return NewSlogLogger(logger, config)
}

// LogMode sets the log level
func (l *SlogLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info logs info messages
func (l *SlogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.log(ctx, slog.LevelInfo, msg, slog.Any("data", data))
	}
}

// Warn logs warning messages
func (l *SlogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.log(ctx, slog.LevelWarn, msg, slog.Any("data", data))
	}
}

// Error logs error messages
func (l *SlogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.log(ctx, slog.LevelError, msg, slog.Any("data", data))
	}
}

// Trace logs SQL execution details
func (l *SlogLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	attrs := []any{
		slog.String("duration", fmt.Sprintf("%.3fms", float64(elapsed.Nanoseconds())/1e6)),
		slog.String("sql", sql),
	}

	if rows != -1 {
		attrs = append(attrs, slog.Int64("rows", rows))
	}

	switch {
	case err != nil && l.LogLevel >= Error && (!l.IgnoreRecordNotFoundError || !errors.Is(err, ErrRecordNotFound)):
		attrs = append(attrs, slog.String("error", err.Error()))
		l.log(ctx, slog.LevelError, "SQL executed", attrs...)

	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= Warn:
		attrs = append(attrs, slog.String("slow_threshold", l.SlowThreshold.String()))
		l.log(ctx, slog.LevelWarn, "SLOW SQL executed", attrs...)

	case l.LogLevel >= Info:
		l.log(ctx, slog.LevelInfo, "SQL executed", attrs...)
	}
}

// ParamsFilter filters SQL parameters
func (l *SlogLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.Parameterized {
		return sql, nil
	}
	return sql, params
}

// log emits a record carrying the caller's program counter, so handlers
// with source attribution point at the statement site instead of here.
func (l *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !l.Logger.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, utils.CallerFrame().PC)
	r.Add(args...)
	_ = l.Logger.Handler().Handle(ctx, r)
}

// SlogLevel converts LogLevel to slog.Level
func SlogLevel(level LogLevel) slog.Level {
	switch level {
	case Silent:
		return slog.LevelError + 4
	case Error:
		return slog.LevelError
	case Warn:
		return slog.LevelWarn
	case Info:
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

package logger

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func setupTestLogrus() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l, &buf
}

func TestNewLogrusLogger(t *testing.T) {
	logrusLogger, _ := setupTestLogrus()

	adapter := NewLogrusLogger(logrusLogger, Config{
		LogLevel:      Info,
		SlowThreshold: 100 * time.Millisecond,
	})

	assert.NotNil(t, adapter)
	assert.Equal(t, Info, adapter.(*LogrusLogger).LogLevel)
}

func TestLogrusLogger_LogMode(t *testing.T) {
	logrusLogger, _ := setupTestLogrus()
	logger := NewLogrusLogger(logrusLogger, Config{LogLevel: Error})

	infoLogger := logger.LogMode(Info)
	assert.Equal(t, Info, infoLogger.(*LogrusLogger).LogLevel)
	assert.Equal(t, Error, logger.(*LogrusLogger).LogLevel)
}

func TestLogrusLogger_LogLevels(t *testing.T) {
	ctx := context.Background()

	logrusLogger, buf := setupTestLogrus()
	logger := NewLogrusLogger(logrusLogger, Config{LogLevel: Info})

	logger.Info(ctx, "logrus info message")
	logger.Warn(ctx, "logrus warn message")
	logger.Error(ctx, "logrus error message")

	output := buf.String()
	assert.Contains(t, output, "logrus info message")
	assert.Contains(t, output, "logrus warn message")
	assert.Contains(t, output, "logrus error message")
	assert.Contains(t, output, "file")
}

func TestLogrusLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("Normal trace", func(t *testing.T) {
		logrusLogger, buf := setupTestLogrus()
		logger := NewLogrusLogger(logrusLogger, Config{LogLevel: Info})

		logger.Trace(ctx, time.Now(), func() (string, int64) {
			return "SELECT * FROM users", 2
		}, nil)

		output := buf.String()
		assert.Contains(t, output, "SELECT * FROM users")
		assert.Contains(t, output, "rows")
	})

	t.Run("Slow query", func(t *testing.T) {
		logrusLogger, buf := setupTestLogrus()
		logger := NewLogrusLogger(logrusLogger, Config{
			LogLevel:      Info,
			SlowThreshold: 50 * time.Millisecond,
		})

		logger.Trace(ctx, time.Now().Add(-100*time.Millisecond), func() (string, int64) {
			return "SELECT * FROM large_table", 100
		}, nil)

		assert.Contains(t, buf.String(), "slow_threshold")
	})

	t.Run("Record not found error with ignore", func(t *testing.T) {
		logrusLogger, buf := setupTestLogrus()
		logger := NewLogrusLogger(logrusLogger, Config{
			LogLevel:                  Error,
			IgnoreRecordNotFoundError: true,
		})

		logger.Trace(ctx, time.Now(), func() (string, int64) {
			return "SELECT * FROM empty_table", 0
		}, ErrRecordNotFound)

		assert.Empty(t, buf.String())
	})
}

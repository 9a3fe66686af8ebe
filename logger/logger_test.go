package logger

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type bufWriter struct {
	buf bytes.Buffer
}

func (w *bufWriter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&w.buf, format, args...)
}

func TestLoggerLevelFiltering(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		level    LogLevel
		expected []string
		silenced []string
	}{
		{"Silent", Silent, nil, []string{"info msg", "warn msg", "error msg"}},
		{"Error", Error, []string{"error msg"}, []string{"info msg", "warn msg"}},
		{"Warn", Warn, []string{"warn msg", "error msg"}, []string{"info msg"}},
		{"Info", Info, []string{"info msg", "warn msg", "error msg"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &bufWriter{}
			l := New(writer, Config{LogLevel: tt.level})

			l.Info(ctx, "info msg")
			l.Warn(ctx, "warn msg")
			l.Error(ctx, "error msg")

			output := writer.buf.String()
			for _, want := range tt.expected {
				assert.Contains(t, output, want)
			}
			for _, unwanted := range tt.silenced {
				assert.NotContains(t, output, unwanted)
			}
		})
	}
}

func TestLoggerLogMode(t *testing.T) {
	writer := &bufWriter{}
	l := New(writer, Config{LogLevel: Error})

	infoLogger := l.LogMode(Info)
	assert.Equal(t, Info, infoLogger.(*logger).LogLevel)
	assert.Equal(t, Error, l.(*logger).LogLevel)
}

func TestLoggerTrace(t *testing.T) {
	ctx := context.Background()

	t.Run("info trace includes sql and rows", func(t *testing.T) {
		writer := &bufWriter{}
		l := New(writer, Config{LogLevel: Info})

		l.Trace(ctx, time.Now(), func() (string, int64) {
			return "SELECT * FROM users", 3
		}, nil)

		output := writer.buf.String()
		assert.Contains(t, output, "SELECT * FROM users")
		assert.Contains(t, output, "[rows:3]")
	})

	t.Run("slow query warns", func(t *testing.T) {
		writer := &bufWriter{}
		l := New(writer, Config{LogLevel: Warn, SlowThreshold: 100 * time.Millisecond})

		l.Trace(ctx, time.Now().Add(-200*time.Millisecond), func() (string, int64) {
			return "SELECT * FROM large_table", 1000
		}, nil)

		output := writer.buf.String()
		assert.Contains(t, output, "SLOW SQL")
		assert.Contains(t, output, "SELECT * FROM large_table")
	})

	t.Run("errors are logged with the statement", func(t *testing.T) {
		writer := &bufWriter{}
		l := New(writer, Config{LogLevel: Error})

		l.Trace(ctx, time.Now(), func() (string, int64) {
			return "SELECT * FROM missing", 0
		}, assert.AnError)

		output := writer.buf.String()
		assert.Contains(t, output, assert.AnError.Error())
		assert.Contains(t, output, "SELECT * FROM missing")
	})

	t.Run("record not found can be ignored", func(t *testing.T) {
		writer := &bufWriter{}
		l := New(writer, Config{LogLevel: Error, IgnoreRecordNotFoundError: true})

		l.Trace(ctx, time.Now(), func() (string, int64) {
			return "SELECT * FROM users WHERE id = 404", 0
		}, ErrRecordNotFound)

		assert.Empty(t, writer.buf.String())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		writer := &bufWriter{}
		l := New(writer, Config{LogLevel: Silent})

		l.Trace(ctx, time.Now(), func() (string, int64) {
			return "SELECT 1", 1
		}, nil)

		assert.Empty(t, writer.buf.String())
	})
}

func TestLoggerParamsFilter(t *testing.T) {
	ctx := context.Background()

	l := New(&bufWriter{}, Config{ParameterizedQueries: true})
	sql, params := l.(*logger).ParamsFilter(ctx, "SELECT * FROM users WHERE id = ?", 1)
	assert.Equal(t, "SELECT * FROM users WHERE id = ?", sql)
	assert.Nil(t, params)

	l = New(&bufWriter{}, Config{})
	_, params = l.(*logger).ParamsFilter(ctx, "SELECT * FROM users WHERE id = ?", 1)
	assert.Equal(t, []interface{}{1}, params)
}

func TestDiscardLogger(t *testing.T) {
	// must not panic
	Discard.Info(context.Background(), "dropped")
	Discard.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
}

func TestColorfulFormats(t *testing.T) {
	writer := &bufWriter{}
	l := New(writer, Config{LogLevel: Info, Colorful: true})

	l.Info(context.Background(), "colored")
	if !strings.Contains(writer.buf.String(), Green) {
		t.Error("colorful logger should emit color escapes")
	}
}

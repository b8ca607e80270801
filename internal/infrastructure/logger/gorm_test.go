package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFunc() (string, int64) {
	return "SELECT * FROM print_history", 3
}

func TestGormLogger_LogMode(t *testing.T) {
	gormLog := NewGormLogger(nil, gormlogger.Info)
	newLogger := gormLog.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	newGormLog, ok := newLogger.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, newGormLog.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Duration
		err     error
		message string
		logged  bool
	}{
		{"error logged", gormlogger.Error, 0, errors.New("disk I/O error"), "SQL Error", true},
		{"record not found ignored", gormlogger.Info, 0, gormlogger.ErrRecordNotFound, "SQL Query", true},
		{"slow query warned", gormlogger.Warn, time.Second, nil, "SLOW SQL", true},
		{"query at info", gormlogger.Info, 0, nil, "SQL Query", true},
		{"query hidden at warn", gormlogger.Warn, 0, nil, "SQL Query", false},
		{"silent", gormlogger.Silent, 0, errors.New("boom"), "SQL Error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level)

			ctx := context.WithValue(context.Background(), RequestIDKey, "req-7")
			gl.Trace(ctx, time.Now().Add(-tt.begin), sqlFunc, tt.err)

			logs := recorded.FilterMessage(tt.message).All()
			if !tt.logged {
				assert.Empty(t, logs)
				return
			}
			require.Len(t, logs, 1)
			assert.Equal(t, "req-7", logs[0].ContextMap()["request_id"])
			assert.Equal(t, "SELECT * FROM print_history", logs[0].ContextMap()["sql"])
		})
	}
}

func TestGormLogger_Messages(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(0))
	ctx := context.Background()

	gl.Info(ctx, "hidden %d", 1)
	gl.Warn(ctx, "migrated %s", "print_history")
	gl.Error(ctx, "failed %s", "ping")

	require.Equal(t, 2, recorded.Len())
	assert.Equal(t, "migrated print_history", recorded.All()[0].Message)
	assert.Equal(t, "failed ping", recorded.All()[1].Message)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}

package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"farmlink/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(debug bool) (*gormSlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	base := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	return newGormSlogLogger(base, cfg).(*gormSlogLogger), buf
}

func TestGormSlogLogger_Levels(t *testing.T) {
	l, _ := newBufferedGormLogger(false)
	assert.Equal(t, logger.Warn, l.level)

	l, _ = newBufferedGormLogger(true)
	assert.Equal(t, logger.Info, l.level)

	silent := l.LogMode(logger.Silent).(*gormSlogLogger)
	assert.Equal(t, logger.Silent, silent.level)
	assert.Equal(t, logger.Info, l.level)
}

func TestGormSlogLogger_Trace(t *testing.T) {
	sqlFn := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("not found is not an error", func(t *testing.T) {
		l, buf := newBufferedGormLogger(false)
		l.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
		assert.Empty(t, buf.String())
	})

	t.Run("errors are logged", func(t *testing.T) {
		l, buf := newBufferedGormLogger(false)
		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("connection reset"))
		assert.Contains(t, buf.String(), "GORM query failed")
		assert.Contains(t, buf.String(), "connection reset")
	})

	t.Run("slow queries are warned", func(t *testing.T) {
		l, buf := newBufferedGormLogger(false)
		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
		assert.Contains(t, buf.String(), "GORM slow query")
	})

	t.Run("fast queries only in debug", func(t *testing.T) {
		l, buf := newBufferedGormLogger(false)
		l.Trace(context.Background(), time.Now(), sqlFn, nil)
		assert.Empty(t, buf.String())

		l, buf = newBufferedGormLogger(true)
		l.Trace(context.Background(), time.Now(), sqlFn, nil)
		assert.Contains(t, buf.String(), "SELECT 1")
	})
}

func TestFromRecord(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	m := fromRecord("sessions/s1/agri-orders", []byte("[]"), now)

	assert.Equal(t, "sessions/s1/agri-orders", m.Key)
	assert.Equal(t, []byte("[]"), m.Value)
	assert.Equal(t, now, m.UpdatedAt)
	assert.Equal(t, "session_records", m.TableName())
}

package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// zlog routes gorm's logger onto zerolog. Slow statements log at warn,
// failures at error; record-not-found is expected and stays quiet.
type zlog struct {
	log   zerolog.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newLogger(l zerolog.Logger, slow time.Duration) *zlog {
	return &zlog{log: l.With().Str("component", "gorm").Logger(), level: gormlogger.Warn, slow: slow}
}

func (z *zlog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *z
	c.level = level
	return &c
}

func (z *zlog) Info(_ context.Context, msg string, data ...interface{}) {
	if z.level >= gormlogger.Info {
		z.log.Info().Interface("data", data).Msg(msg)
	}
}

func (z *zlog) Warn(_ context.Context, msg string, data ...interface{}) {
	if z.level >= gormlogger.Warn {
		z.log.Warn().Interface("data", data).Msg(msg)
	}
}

func (z *zlog) Error(_ context.Context, msg string, data ...interface{}) {
	if z.level >= gormlogger.Error {
		z.log.Error().Interface("data", data).Msg(msg)
	}
}

func (z *zlog) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && z.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		z.log.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query failed")
	case z.slow > 0 && elapsed > z.slow && z.level >= gormlogger.Warn:
		sql, rows := fc()
		z.log.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow query")
	case z.level >= gormlogger.Info:
		sql, rows := fc()
		z.log.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
	}
}

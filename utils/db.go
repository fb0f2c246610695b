package utils

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ZapGormLogger only reports slow queries and real errors.
type ZapGormLogger struct {
	SlowThreshold time.Duration
}

func (l *ZapGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

func (l *ZapGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {}

func (l *ZapGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {}

func (l *ZapGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.Errorw("gorm error", "msg", msg, "data", data)
}

func (l *ZapGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		log.Errorw("sql error", "error", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case elapsed >= l.SlowThreshold:
		log.Warnw("slow sql", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}

// GormConfig is shared by the postgres connection and in-memory test databases.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         &ZapGormLogger{SlowThreshold: 100 * time.Millisecond},
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// InitDB opens the postgres pool.
func InitDB(databaseURL string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(databaseURL), GormConfig())
	if err != nil {
		return err
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Infow("database connected")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

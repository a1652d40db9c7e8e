package database

import (
	"fmt"
	"strings"
	"time"

	"nexus/internal/domain"
	"nexus/internal/pkg/logger"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Connect opens Postgres for postgres:// DSNs and SQLite (modernc) otherwise.
// All timestamps written through the returned handle are UTC.
func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(),
	}

	if IsPostgres(dsn) {
		logger.Info().Msg("connecting to PostgreSQL")
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}

	logger.Info().Str("dsn", dsn).Msg("using SQLite")
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer; in-memory databases exist per connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	return db, nil
}

// SlowQueryThreshold is the duration above which gorm reports a query.
const SlowQueryThreshold = 500 * time.Millisecond

// gormWriter forwards gorm's log lines to the process logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	logger.Warn().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(gormWriter{}, gormlogger.Config{
		SlowThreshold:             SlowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

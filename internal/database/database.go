package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/welldanyogia/folio-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection pool configuration
const (
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute

	slowQueryThreshold = 200 * time.Millisecond
)

// Options tunes the connection; zero values fall back to the defaults
type Options struct {
	// Production rejects sslmode=disable
	Production bool

	// Logger receives slow query and error reports
	Logger *slog.Logger

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string, opts Options) (*gorm.DB, error) {
	if opts.Production {
		if err := validateSSLMode(databaseURL); err != nil {
			return nil, err
		}
	}

	return Open(postgres.Open(databaseURL), opts)
}

// Open opens a database through any gorm dialector and configures its pool
func Open(dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(slogWriter{log: log}, logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configureConnectionPool(db, opts); err != nil {
		return nil, err
	}

	log.Info("connected to database")
	return db, nil
}

// validateSSLMode ensures SSL is enabled in production
func validateSSLMode(databaseURL string) error {
	// Check if sslmode is explicitly disabled
	if strings.Contains(databaseURL, "sslmode=disable") {
		return fmt.Errorf("SSL mode cannot be disabled in production")
	}

	// If no sslmode specified, it's okay (defaults to prefer/require depending on server)
	return nil
}

// configureConnectionPool sets up connection pool limits
func configureConnectionPool(db *gorm.DB, opts Options) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(orDefault(opts.MaxIdleConns, DefaultMaxIdleConns))
	sqlDB.SetMaxOpenConns(orDefault(opts.MaxOpenConns, DefaultMaxOpenConns))
	sqlDB.SetConnMaxLifetime(orDefault(opts.ConnMaxLifetime, DefaultConnMaxLifetime))
	sqlDB.SetConnMaxIdleTime(orDefault(opts.ConnMaxIdleTime, DefaultConnMaxIdleTime))

	return nil
}

func orDefault[T int | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

// Migrate creates or updates the messages table and its indexes
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&models.Message{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping checks the database is reachable
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// slogWriter adapts slog to gorm's logger.Writer
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), slog.String("component", "gorm"))
}

package database

import (
	"database/sql"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// NewLogger returns the gorm logger used by both dialects.
func NewLogger(level logger.LogLevel, slowThreshold time.Duration) logger.Interface {
	return logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

// PostgresOptions controls the production connection. ReplicaDSNs, when set, are
// registered through dbresolver and serve reads outside transactions.
type PostgresOptions struct {
	DSN          string
	ReplicaDSNs  []string
	Logger       logger.Interface
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration
}

func OpenPostgres(opts PostgresOptions) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, eris.New("postgres DSN is required")
	}

	gormLogger := opts.Logger
	if gormLogger == nil {
		gormLogger = NewLogger(logger.Warn, 10*time.Second)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  opts.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "opening postgres database")
	}

	if len(opts.ReplicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(opts.ReplicaDSNs))
		for _, dsn := range opts.ReplicaDSNs {
			replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})
		if opts.MaxOpenConns > 0 {
			resolver = resolver.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			resolver = resolver.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLife > 0 {
			resolver = resolver.SetConnMaxLifetime(opts.ConnMaxLife)
		}
		if err := db.Use(resolver); err != nil {
			return nil, eris.Wrap(err, "registering read replicas")
		}
	}

	if err := applyConnectionSettings(db, opts.MaxOpenConns, opts.MaxIdleConns, 0, opts.ConnMaxLife); err != nil {
		return nil, err
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, eris.Wrap(err, "testing database connection")
	}

	return db, nil
}

// SupabaseDSN builds a DSN from discrete connection parts, the way the hosted database exposes them.
func SupabaseDSN(host, user, password, name, port string) string {
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require", host, user, password, name, port)
}

// SQLiteOptions controls how the SQLite database connection is initialised.
type SQLiteOptions struct {
	Path         string
	Logger       logger.Interface
	BusyTimeout  time.Duration
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxIdle  time.Duration
	ConnMaxLife  time.Duration
}

// OpenSQLite establishes a SQLite connection with foreign keys enforced.
func OpenSQLite(opts SQLiteOptions) (*gorm.DB, error) {
	if opts.Path == "" {
		return nil, eris.New("database path is required")
	}

	if opts.BusyTimeout == 0 {
		opts.BusyTimeout = 5 * time.Second
	}

	busyTimeoutMillis := int(opts.BusyTimeout / time.Millisecond)
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=1&_journal_mode=WAL", opts.Path, busyTimeoutMillis)

	gormLogger := opts.Logger
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger, TranslateError: true})
	if err != nil {
		return nil, eris.Wrap(err, "opening sqlite database")
	}

	if err := applyConnectionSettings(db, opts.MaxOpenConns, opts.MaxIdleConns, opts.ConnMaxIdle, opts.ConnMaxLife); err != nil {
		return nil, err
	}

	if err := enforcePragmas(db, busyTimeoutMillis); err != nil {
		return nil, err
	}

	return db, nil
}

func applyConnectionSettings(db *gorm.DB, maxOpen, maxIdle int, maxIdleTime, maxLife time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return eris.Wrap(err, "retrieving sql.DB from gorm")
	}

	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(maxIdleTime)
	}
	if maxLife > 0 {
		sqlDB.SetConnMaxLifetime(maxLife)
	}

	return nil
}

func enforcePragmas(db *gorm.DB, busyTimeoutMillis int) error {
	if err := db.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		return eris.Wrap(err, "enabling foreign keys pragma")
	}

	if err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMillis)).Error; err != nil {
		return eris.Wrap(err, "configuring busy timeout pragma")
	}

	if err := db.Exec("PRAGMA journal_mode = WAL;").Error; err != nil {
		return eris.Wrap(err, "setting journal mode to WAL")
	}

	return nil
}

// Close releases the underlying database resources.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return eris.Wrap(err, "retrieving sql.DB for close")
	}

	if err := sqlDB.Close(); err != nil {
		return eris.Wrap(err, "closing database connection")
	}

	return nil
}

// readTxOptions gives a listing's count and page query one snapshot where the dialect supports it.
func readTxOptions(db *gorm.DB) *sql.TxOptions {
	if db.Dialector.Name() == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

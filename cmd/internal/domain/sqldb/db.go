package sqldb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"healtogether/cmd/internal/domain/entity"
)

type Options struct {
	Driver string
	DSN    string

	// Verbose logs every statement.
	Verbose bool

	// LogWriter receives gorm's log lines, stdout when nil.
	LogWriter logger.Writer
}

func Init(opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(opts),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer.
	if opts.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// newLogger keeps gorm's default format but stays quiet about lookups that
// find nothing, which repositories report as nil results.
func newLogger(opts Options) logger.Interface {
	writer := opts.LogWriter
	if writer == nil {
		writer = log.New(os.Stdout, "\r\n", log.LstdFlags)
	}

	level := logger.Warn
	if opts.Verbose {
		level = logger.Info
	}
	return logger.New(writer, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  opts.LogWriter == nil,
	})
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case "sqlite":
		return sqlite.Open(opts.DSN), nil
	case "mysql":
		return gormmysql.Open(opts.DSN), nil
	case "postgres":
		return postgres.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", opts.Driver)
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Appointment{},
		&entity.Prescription{},
		&entity.MedicationIntake{},
		&entity.CaretakerRequest{},
		&entity.MedicalVisitRequest{},
	)
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// IsUniqueViolation recognizes unique constraint failures from every
// supported driver, translated or not.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

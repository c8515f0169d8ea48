// Package integration runs the repositories and application services against
// a real PostgreSQL started with testcontainers. One container serves the
// whole package; every test leaves the tables empty behind it.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/estatebook/backend/internal/infrastructure/migration"
	"github.com/estatebook/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is the migrated database of the package container
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	DSN       string
	container testcontainers.Container
}

var (
	sharedOnce sync.Once
	sharedDB   *TestDB
	sharedErr  error
)

// NewTestDB returns the package database, starting and migrating it on first
// use. Tables are truncated when the calling test finishes.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedOnce.Do(func() {
		sharedDB, sharedErr = startTestDB(context.Background())
	})
	if sharedErr != nil {
		t.Fatalf("integration database unavailable: %v", sharedErr)
	}
	t.Cleanup(func() {
		if err := sharedDB.CleanTables(); err != nil {
			t.Errorf("failed to truncate tables: %v", err)
		}
	})
	return sharedDB
}

func startTestDB(ctx context.Context) (*TestDB, error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("estatebook_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	tdb := &TestDB{container: container}
	if tdb.DSN, err = container.ConnectionString(ctx, "sslmode=disable"); err != nil {
		tdb.terminate()
		return nil, fmt.Errorf("connection string: %w", err)
	}
	// The migrator closes the pool it is given, so it gets its own
	if err := migrate(tdb.DSN); err != nil {
		tdb.terminate()
		return nil, err
	}
	if tdb.DB, tdb.SqlDB, err = connect(tdb.DSN); err != nil {
		tdb.terminate()
		return nil, err
	}
	return tdb, nil
}

func migrate(dsn string) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func connect(dsn string) (*gorm.DB, *sql.DB, error) {
	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open gorm: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	return db, sqlDB, nil
}

// CleanTables empties the booking tables, leaving the migration bookkeeping
func (tdb *TestDB) CleanTables() error {
	return tdb.DB.Exec("TRUNCATE TABLE payment_records, bookings CASCADE").Error
}

func (tdb *TestDB) terminate() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.container != nil {
		if err := tdb.container.Terminate(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
		}
	}
}

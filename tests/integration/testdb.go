//go:build integration

// Package integration runs the document store and repositories against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/shopadmin/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	sharedOnce      sync.Once
	sharedContainer *tcpostgres.PostgresContainer
	sharedDSN       string
	sharedErr       error
)

// TestDB is a migrated PostgreSQL database with a document store on top
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	Store *docstore.GormStore
	DSN   string
	t     *testing.T
}

// TerminateShared stops the shared container, if one was started
func TerminateShared() {
	if sharedContainer != nil {
		_ = sharedContainer.Terminate(context.Background())
	}
}

// NewTestDB connects to the shared container and empties the documents table.
// Tests using it must not run in parallel.
func NewTestDB(t *testing.T, opts ...docstore.Option) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	sharedOnce.Do(func() {
		sharedDSN, sharedErr = startContainer()
		if sharedErr == nil {
			sharedErr = runMigrations(sharedDSN)
		}
	})
	require.NoError(t, sharedErr, "Failed to prepare PostgreSQL")

	db, sqlDB := connectToDatabase(t, sharedDSN)
	require.NoError(t, db.Exec("TRUNCATE TABLE documents").Error)

	store := docstore.NewGormStore(db, nil, opts...)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, Store: store, DSN: sharedDSN, t: t}
	t.Cleanup(func() {
		_ = store.Close()
		_ = sqlDB.Close()
	})
	return tdb
}

// RowCount returns the number of stored documents in collection
func (tdb *TestDB) RowCount(collection string) int64 {
	tdb.t.Helper()
	var n int64
	require.NoError(tdb.t, tdb.DB.Table("documents").Where("collection = ?", collection).Count(&n).Error)
	return n
}

func startContainer() (string, error) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shop_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return "", err
	}
	sharedContainer = container
	return container.ConnectionString(ctx, "sslmode=disable")
}

// runMigrations applies the embedded schema over its own connection since
// closing the migrator closes the database handle
func runMigrations(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	m, err := migration.New(db, nil)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()
	return m.Up()
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

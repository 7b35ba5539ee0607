// Package testutil holds shared test fixtures: a migrated PostgreSQL
// container and a Telnet client.
package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/lootlist/internal/config"
	"github.com/cory-johannsen/lootlist/internal/storage/postgres"
)

const (
	pgImage = "postgres:16-alpine"
	pgCreds = "lootlist"
)

// Database is a throwaway PostgreSQL server with the schema applied.
type Database struct {
	Container testcontainers.Container
	Pool      *postgres.Pool
	Config    config.DatabaseConfig
}

// NewDatabase starts a container, runs every migration up and connects.
// The container is removed when the test ends; under -short the test is
// skipped instead.
//
// Precondition: Docker is reachable unless testing.Short().
func NewDatabase(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}
	ctx := context.Background()
	start := time.Now()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgCreds,
				"POSTGRES_PASSWORD": pgCreds,
				"POSTGRES_DB":       pgCreds,
			},
			// The server logs readiness twice: once for the init pass, once for real.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting %s: %v", pgImage, err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	cfg := config.DatabaseConfig{
		Enabled:         true,
		Host:            host,
		Port:            port.Int(),
		User:            pgCreds,
		Password:        pgCreds,
		Name:            pgCreds,
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	res, err := postgres.Migrate(cfg.DSN(), MigrationsDir(), postgres.Up, 0)
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	t.Logf("postgres ready at schema version %d [%s]", res.Version, time.Since(start))
	return &Database{Container: ctr, Pool: pool, Config: cfg}
}

// NewPool is NewDatabase for tests that only need the pgx pool.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return NewDatabase(t).Pool.DB()
}

// MigrationsDir is the repository's migrations directory.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tclog "github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	testImage    = "postgres:16-alpine"
	testDatabase = "envsync_test"
	testUser     = "envsync"
	testPassword = "envsync"
)

// silentLogger drops testcontainers output
type silentLogger struct{}

func (silentLogger) Printf(string, ...any) {}

var _ tclog.Logger = silentLogger{}

// SetupTestDBContainer starts an empty Postgres container and returns its
// connection string. Migrations are not applied.
func SetupTestDBContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	container, err := postgres.Run(ctx, testImage,
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		postgres.BasicWaitStrategies(),
		tc.WithLogger(silentLogger{}),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return connString, func() { tc.CleanupContainer(t, container) }
}

// SetupTestDB starts a migrated Postgres container and returns a pool on it
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()
	connString, stopContainer := SetupTestDBContainer(t, ctx)
	require.NoError(t, MigrateUp(connString))

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	return pool, func() {
		pool.Close()
		stopContainer()
	}
}

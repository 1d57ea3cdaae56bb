package migrate_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/infrastructure/migrate"
)

const latestVersion = 2

func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed migration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestRunner(t *testing.T) {
	dsn := startPostgres(t)
	runner := migrate.NewRunner(&migrate.Config{
		DatabaseURL:    dsn,
		MigrationsPath: "../../../migrations",
	}, zap.NewNop())

	version, dirty, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, runner.Up())
	version, dirty, err = runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(latestVersion), version)
	assert.False(t, dirty)

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var tables []string
	require.NoError(t, db.Select(&tables,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_name IN ('messages', 'users') ORDER BY table_name`))
	assert.Equal(t, []string{"messages", "users"}, tables)

	// Running again is a no-op.
	require.NoError(t, runner.Up())

	require.NoError(t, runner.Steps(-1))
	version, _, err = runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(latestVersion-1), version)

	require.NoError(t, runner.Steps(1))
	version, _, err = runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(latestVersion), version)
}

func TestRunner_BadMigrationsPath(t *testing.T) {
	dsn := startPostgres(t)
	runner := migrate.NewRunner(&migrate.Config{
		DatabaseURL:    dsn,
		MigrationsPath: "./does-not-exist",
	}, zap.NewNop())

	err := runner.Up()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migrate instance")
}

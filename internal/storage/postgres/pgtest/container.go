//go:build integration

// Package pgtest starts a throwaway Postgres for integration tests.
package pgtest

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/climate-finance-tracker/cft-backend/config"
	"github.com/climate-finance-tracker/cft-backend/internal/logging"
	"github.com/climate-finance-tracker/cft-backend/internal/storage/postgres"
)

const image = "postgres:16-alpine"

// NewDB runs a migrated database in a container that is terminated when the
// test finishes.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	const (
		dbName     = "climate_finance"
		dbUser     = "user"
		dbPassword = "password"
	)

	container, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername(dbUser),
		tcpostgres.WithPassword(dbPassword),
		tcpostgres.BasicWaitStrategies(),
	)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	db, err := postgres.NewConnection(ctx, &config.DatabaseConfig{
		Driver:   "postgres",
		Host:     host,
		Port:     portNum,
		User:     dbUser,
		Password: dbPassword,
		Name:     dbName,
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.MigrateUp(db, logging.Discard()))
	return db
}

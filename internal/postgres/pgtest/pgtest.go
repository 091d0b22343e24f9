// Package pgtest starts a throwaway Postgres for repository tests.
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ariefcatur/go-cafe-orders/internal/postgres"
)

// Start runs a migrated Postgres container and returns a pool connected to
// it. The container and pool are released through t.Cleanup.
func Start(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(pool))
	return pool
}

// Reset empties every table and restarts the id sequences, dropping the
// seeded menu.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `TRUNCATE order_items, orders, menus RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

// SeedMenu inserts a menu row and returns its id.
func SeedMenu(t *testing.T, pool *pgxpool.Pool, name string, price int64, stock int) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO menus (name, description, price, stock) VALUES ($1, $2, $3, $4) RETURNING id`,
		name, name+" description", price, stock,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// Stock reads the current stock for a menu.
func Stock(t *testing.T, pool *pgxpool.Pool, menuID int64) int {
	t.Helper()
	var stock int
	err := pool.QueryRow(context.Background(), `SELECT stock FROM menus WHERE id=$1`, menuID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

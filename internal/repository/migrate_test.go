package repository_test

import (
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/effective-orders/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	ctx := t.Context()

	_, connStr, err := runPostgres(ctx)
	require.NoError(t, err)

	dir, err := filepath.Abs("../migrations")
	require.NoError(t, err)

	require.NoError(t, repository.RunMigrations(dir, connStr))
	// second run has nothing to apply
	require.NoError(t, repository.RunMigrations(dir, connStr))

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	defer conn.Close(ctx)

	for _, table := range []string{"products", "carts", "cart_items", "orders", "order_items"} {
		var exists bool
		err := conn.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}

func TestRunMigrations_EmptyDir(t *testing.T) {
	assert.EqualError(t, repository.RunMigrations("", "postgres://localhost"), "migrations dir is empty")
}

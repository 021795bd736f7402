package repository_test

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	return runPostgres(ctx,
		postgres.WithInitScripts(
			"../migrations/01_products.up.sql",
			"../migrations/02_carts.up.sql",
			"../migrations/03_orders.up.sql"),
	)
}

func runPostgres(ctx context.Context, opts ...testcontainers.ContainerCustomizer) (*postgres.PostgresContainer, string, error) {
	opts = append([]testcontainers.ContainerCustomizer{postgres.BasicWaitStrategies()}, opts...)

	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22", opts...)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

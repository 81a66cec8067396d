package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/prasetya/phoneshop/internal/repository"
)

type (
	setupFunc    func(context.Context) (*pgxpool.Pool, *postgres.PostgresContainer, *repository.Queries, *ReportService)
	teardownFunc func(*pgxpool.Pool, *postgres.PostgresContainer)
)

func setup(t *testing.T) setupFunc {
	return func(c context.Context) (*pgxpool.Pool, *postgres.PostgresContainer, *repository.Queries, *ReportService) {
		pgContainer, err := postgres.Run(
			c,
			"postgres:16.6-alpine3.21",
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_DB":       "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_PORT":     "5432",
				"POSTGRES_USER":     "postgres",
			}),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			postgres.WithDatabase("postgres"),
			postgres.BasicWaitStrategies(),
			postgres.WithInitScripts(
				filepath.Join("..", "..", "..", "migrations", "20250610093000_create_catalog.up.sql"),
				filepath.Join("..", "..", "..", "migrations", "20250610093100_create_cart.up.sql"),
				filepath.Join("..", "..", "..", "migrations", "20250610093200_create_orders.up.sql"),
			),
		)
		if err != nil {
			t.Fatalf("failed running postgres container with error: %s", err)
		}

		pgConnStr, err := pgContainer.ConnectionString(c)
		if err != nil {
			t.Fatalf("failed getting postgres connection string with error: %s", err)
		}

		pgConfig, err := pgxpool.ParseConfig(pgConnStr)
		if err != nil {
			t.Fatalf("failed parsing pgconfig with error: %s", err)
		}

		pool, err := pgxpool.NewWithConfig(c, pgConfig)
		if err != nil {
			t.Fatalf("failed initializing postgres pool with error: %s", err)
		}

		if err = pool.Ping(c); err != nil {
			t.Fatalf("failed ping postgres pool with error: %s", err)
		}

		queries := repository.New(pool)
		reportService := NewReportService(queries)
		return pool, pgContainer, queries, &reportService
	}
}

func teardown(t *testing.T) teardownFunc {
	return func(pool *pgxpool.Pool, pgContainer *postgres.PostgresContainer) {
		pool.Close()
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
}

func seedProduct(
	t *testing.T,
	c context.Context,
	queries *repository.Queries,
	name string,
) repository.Product {
	t.Helper()
	product, err := queries.InsertProduct(c, repository.InsertProductParams{
		Name:     name,
		Slug:     gofakeit.UUID(),
		Price:    repository.NumericFromDecimal(decimal.NewFromInt(100)),
		OldPrice: repository.NumericFromDecimal(decimal.Zero),
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("failed seeding product with error: %s", err)
	}
	return product
}

type orderLine struct {
	product  repository.Product
	quantity int32
	price    decimal.Decimal
}

func seedOrder(
	t *testing.T,
	c context.Context,
	queries *repository.Queries,
	status string,
	createdAt time.Time,
	lines ...orderLine,
) repository.Order {
	t.Helper()
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.price.Mul(decimal.NewFromInt32(line.quantity)))
	}
	order, err := queries.InsertOrder(c, repository.InsertOrderParams{
		UserID:      nil,
		Status:      status,
		TotalAmount: repository.NumericFromDecimal(total),
		CreatedAt:   createdAt,
	})
	if err != nil {
		t.Fatalf("failed seeding order with error: %s", err)
	}
	for _, line := range lines {
		_, err := queries.InsertOrderItem(c, repository.InsertOrderItemParams{
			OrderID:   order.ID,
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			Price:     repository.NumericFromDecimal(line.price),
		})
		if err != nil {
			t.Fatalf("failed seeding order item with error: %s", err)
		}
	}
	return order
}

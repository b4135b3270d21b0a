package testhelpers

import (
	"context"
	"os"
	"testing"

	"orderdesk/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. The test is skipped when the variable is unset or -short is
// given.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, database.PoolConfig{DSN: connString, MaxConns: 4})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := database.ApplySchema(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, customers, products RESTART IDENTITY`); err != nil {
		pool.Close()
		t.Fatalf("Failed to reset test database: %v", err)
	}

	return &TestDB{
		Pool:    pool,
		Cleanup: pool.Close,
	}
}

// SetupTestCustomer creates a customer and returns its id
func SetupTestCustomer(t *testing.T, db *TestDB, name string) int64 {
	t.Helper()

	var id int64
	query := `INSERT INTO customers (name, email) VALUES ($1, $2) RETURNING id`
	if err := db.Pool.QueryRow(context.Background(), query, name, name+"@example.com").Scan(&id); err != nil {
		t.Fatalf("Failed to create test customer: %v", err)
	}
	return id
}

// SetupTestProduct creates a product and returns its id
func SetupTestProduct(t *testing.T, db *TestDB, name string, price float64) int64 {
	t.Helper()

	var id int64
	query := `INSERT INTO products (name, price) VALUES ($1, $2) RETURNING id`
	if err := db.Pool.QueryRow(context.Background(), query, name, price).Scan(&id); err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return id
}

// CountRows returns the number of rows in table matching where, e.g.
// CountRows(t, db, "order_items", "order_id = $1", 7)
func CountRows(t *testing.T, db *TestDB, table, where string, args ...any) int {
	t.Helper()

	var n int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	if err := db.Pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

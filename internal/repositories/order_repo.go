package repositories

import (
	"context"
	"errors"

	"orderdesk/internal/common"
	"orderdesk/internal/models"
	"orderdesk/pkg/database"

	"github.com/jackc/pgx/v5"
)

// OrderRepository covers the orders table. Write methods take the querier to
// run on so they can be composed inside a transaction scope; reads go
// straight to the pool.
type OrderRepository interface {
	InsertHeader(ctx context.Context, q database.DB, customerID int64) (*models.Order, error)
	UpdateHeader(ctx context.Context, q database.DB, orderID, customerID int64) (*models.Order, error)
	DeleteHeader(ctx context.Context, q database.DB, orderID int64) (bool, error)
	LockHeader(ctx context.Context, q database.DB, orderID int64) (bool, error)
	GetSummary(ctx context.Context, orderID int64) (*models.OrderSummary, error)
	List(ctx context.Context) ([]models.OrderSummary, error)
	CountOrphanItems(ctx context.Context) (int64, error)
}

type orderRepo struct {
	db database.DB
}

func NewOrderRepo(db database.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) InsertHeader(ctx context.Context, q database.DB, customerID int64) (*models.Order, error) {
	order := &models.Order{CustomerID: customerID}
	query := `
		INSERT INTO orders (customer_id)
		VALUES ($1)
		RETURNING id, created_at
	`
	if err := q.QueryRow(ctx, query, customerID).Scan(&order.ID, &order.CreatedAt); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateHeader returns common.ErrNotFound when no order matched orderID.
// created_at is never rewritten.
func (r *orderRepo) UpdateHeader(ctx context.Context, q database.DB, orderID, customerID int64) (*models.Order, error) {
	order := &models.Order{ID: orderID, CustomerID: customerID}
	query := `
		UPDATE orders
		SET customer_id = $1
		WHERE id = $2
		RETURNING created_at
	`
	err := q.QueryRow(ctx, query, customerID, orderID).Scan(&order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteHeader reports false when no order matched orderID
func (r *orderRepo) DeleteHeader(ctx context.Context, q database.DB, orderID int64) (bool, error) {
	query := `DELETE FROM orders WHERE id = $1`
	tag, err := q.Exec(ctx, query, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// LockHeader takes a row lock on the order for the rest of the transaction
func (r *orderRepo) LockHeader(ctx context.Context, q database.DB, orderID int64) (bool, error) {
	var id int64
	query := `SELECT id FROM orders WHERE id = $1 FOR UPDATE`
	err := q.QueryRow(ctx, query, orderID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *orderRepo) GetSummary(ctx context.Context, orderID int64) (*models.OrderSummary, error) {
	summary := &models.OrderSummary{}
	query := `
		SELECT o.id, o.customer_id, c.name AS customer_name, o.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`
	err := r.db.QueryRow(ctx, query, orderID).Scan(&summary.ID, &summary.CustomerID, &summary.CustomerName, &summary.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *orderRepo) List(ctx context.Context) ([]models.OrderSummary, error) {
	query := `
		SELECT o.id, o.customer_id, c.name AS customer_name, o.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.OrderSummary{}
	for rows.Next() {
		var o models.OrderSummary
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CountOrphanItems counts line items whose order row no longer exists
func (r *orderRepo) CountOrphanItems(ctx context.Context) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*)
		FROM order_items oi
		LEFT JOIN orders o ON o.id = oi.order_id
		WHERE o.id IS NULL
	`
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

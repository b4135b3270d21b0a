package repositories

import (
	"context"

	"orderdesk/internal/models"
	"orderdesk/pkg/database"
)

type OrderItemRepository interface {
	Insert(ctx context.Context, q database.DB, item *models.OrderItem) error
	Update(ctx context.Context, q database.DB, item *models.OrderItem) (bool, error)
	Delete(ctx context.Context, q database.DB, orderID, itemID int64) (bool, error)
	DeleteByOrderID(ctx context.Context, q database.DB, orderID int64) (int64, error)
	CountByOrderID(ctx context.Context, q database.DB, orderID int64) (int, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]models.OrderItemDetails, error)
}

type orderItemRepo struct {
	db database.DB
}

func NewOrderItemRepo(db database.DB) OrderItemRepository {
	return &orderItemRepo{db: db}
}

// Insert stores item and fills in its generated ID
func (r *orderItemRepo) Insert(ctx context.Context, q database.DB, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return q.QueryRow(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice).Scan(&item.ID)
}

func (r *orderItemRepo) Update(ctx context.Context, q database.DB, item *models.OrderItem) (bool, error) {
	query := `
		UPDATE order_items
		SET product_id = $1, quantity = $2, unit_price = $3
		WHERE id = $4 AND order_id = $5
	`
	tag, err := q.Exec(ctx, query, item.ProductID, item.Quantity, item.UnitPrice, item.ID, item.OrderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderItemRepo) Delete(ctx context.Context, q database.DB, orderID, itemID int64) (bool, error) {
	query := `DELETE FROM order_items WHERE id = $1 AND order_id = $2`
	tag, err := q.Exec(ctx, query, itemID, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderItemRepo) DeleteByOrderID(ctx context.Context, q database.DB, orderID int64) (int64, error) {
	query := `DELETE FROM order_items WHERE order_id = $1`
	tag, err := q.Exec(ctx, query, orderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *orderItemRepo) CountByOrderID(ctx context.Context, q database.DB, orderID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM order_items WHERE order_id = $1`
	if err := q.QueryRow(ctx, query, orderID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderItemRepo) ListByOrderID(ctx context.Context, orderID int64) ([]models.OrderItemDetails, error) {
	query := `
		SELECT oi.id, oi.product_id, p.name AS product_name, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItemDetails{}
	for rows.Next() {
		var item models.OrderItemDetails
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

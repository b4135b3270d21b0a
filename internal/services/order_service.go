package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"orderdesk/internal/common"
	"orderdesk/internal/models"
	"orderdesk/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// TxRunner runs fn inside a transaction that is committed when fn returns nil
// and rolled back otherwise. *database.TxScope implements it.
type TxRunner interface {
	Run(ctx context.Context, op string, fn func(tx pgx.Tx) error) error
}

// OrderServiceInterface defines the interface for order service operations
type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, customerID int64, items []models.OrderItemInput) (*models.Order, error)
	ReplaceOrder(ctx context.Context, orderID, customerID int64, items []models.OrderItemInput) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	GetOrder(ctx context.Context, orderID int64) (*models.OrderDetails, error)
	ListOrders(ctx context.Context) ([]models.OrderSummary, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItemDetails, error)
	AddOrderItem(ctx context.Context, orderID int64, input models.OrderItemInput) (*models.OrderItem, error)
	UpdateOrderItem(ctx context.Context, orderID, itemID int64, input models.OrderItemInput) (*models.OrderItem, error)
	RemoveOrderItem(ctx context.Context, orderID, itemID int64) error
}

type orderService struct {
	tx        TxRunner
	orderRepo repositories.OrderRepository
	itemRepo  repositories.OrderItemRepository
}

// NewOrderService creates a new order service instance
func NewOrderService(tx TxRunner, orderRepo repositories.OrderRepository, itemRepo repositories.OrderItemRepository) OrderServiceInterface {
	return &orderService{
		tx:        tx,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
	}
}

// CreateOrder inserts the header and then every item in one transaction.
// Either the whole order becomes visible or none of it does.
func (s *orderService) CreateOrder(ctx context.Context, customerID int64, inputs []models.OrderItemInput) (*models.Order, error) {
	if err := ValidateCustomerRef(customerID); err != nil {
		return nil, err
	}
	items, err := ValidateItems(inputs)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.tx.Run(ctx, "create order", func(tx pgx.Tx) error {
		header, err := s.orderRepo.InsertHeader(ctx, tx, customerID)
		if err != nil {
			return fmt.Errorf("insert order header: %w", err)
		}
		if err := s.insertItems(ctx, tx, header.ID, items); err != nil {
			return err
		}
		header.Items = items
		order = header
		return nil
	})
	if err != nil {
		return nil, s.writeFailure(ctx, "create order", err)
	}

	slog.InfoContext(ctx, "order created", "order_id", order.ID, "customer_id", customerID, "items", len(items))
	return order, nil
}

// ReplaceOrder updates the header and swaps the full item set for the
// submitted one. An unknown order id stops the operation before any item row
// is touched.
func (s *orderService) ReplaceOrder(ctx context.Context, orderID, customerID int64, inputs []models.OrderItemInput) (*models.Order, error) {
	if err := ValidateCustomerRef(customerID); err != nil {
		return nil, err
	}
	items, err := ValidateItems(inputs)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.tx.Run(ctx, "replace order", func(tx pgx.Tx) error {
		header, err := s.orderRepo.UpdateHeader(ctx, tx, orderID, customerID)
		if err != nil {
			return fmt.Errorf("update order header: %w", err)
		}
		if _, err := s.itemRepo.DeleteByOrderID(ctx, tx, orderID); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		if err := s.insertItems(ctx, tx, orderID, items); err != nil {
			return err
		}
		header.Items = items
		order = header
		return nil
	})
	if err != nil {
		return nil, s.writeFailure(ctx, "replace order", err, "order_id", orderID)
	}

	slog.InfoContext(ctx, "order replaced", "order_id", orderID, "items", len(items))
	return order, nil
}

// DeleteOrder removes the items and then the header in one transaction
func (s *orderService) DeleteOrder(ctx context.Context, orderID int64) error {
	err := s.tx.Run(ctx, "delete order", func(tx pgx.Tx) error {
		if _, err := s.itemRepo.DeleteByOrderID(ctx, tx, orderID); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		found, err := s.orderRepo.DeleteHeader(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("delete order header: %w", err)
		}
		if !found {
			return common.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return s.writeFailure(ctx, "delete order", err, "order_id", orderID)
	}

	slog.InfoContext(ctx, "order deleted", "order_id", orderID)
	return nil
}

// GetOrder reads the header with the customer name and the items with their
// product names. It runs outside any transaction.
func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*models.OrderDetails, error) {
	summary, err := s.orderRepo.GetSummary(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	items, err := s.itemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items of order %d: %w", orderID, err)
	}
	return &models.OrderDetails{OrderSummary: *summary, Items: items}, nil
}

// ListOrders lists every order with its customer name
func (s *orderService) ListOrders(ctx context.Context) ([]models.OrderSummary, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListOrderItems lists the items of an existing order
func (s *orderService) ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItemDetails, error) {
	if _, err := s.orderRepo.GetSummary(ctx, orderID); err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	items, err := s.itemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items of order %d: %w", orderID, err)
	}
	return items, nil
}

// AddOrderItem attaches one item to an existing order. The header row is
// locked first so the item can never outlive a concurrently deleted order.
func (s *orderService) AddOrderItem(ctx context.Context, orderID int64, input models.OrderItemInput) (*models.OrderItem, error) {
	item, err := ValidateItem(input)
	if err != nil {
		return nil, err
	}
	item.OrderID = orderID

	err = s.tx.Run(ctx, "add order item", func(tx pgx.Tx) error {
		found, err := s.orderRepo.LockHeader(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("lock order header: %w", err)
		}
		if !found {
			return common.ErrNotFound
		}
		if err := s.itemRepo.Insert(ctx, tx, &item); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.writeFailure(ctx, "add order item", err, "order_id", orderID)
	}

	return &item, nil
}

// UpdateOrderItem rewrites a single item of an order
func (s *orderService) UpdateOrderItem(ctx context.Context, orderID, itemID int64, input models.OrderItemInput) (*models.OrderItem, error) {
	item, err := ValidateItem(input)
	if err != nil {
		return nil, err
	}
	item.ID = itemID
	item.OrderID = orderID

	err = s.tx.Run(ctx, "update order item", func(tx pgx.Tx) error {
		found, err := s.itemRepo.Update(ctx, tx, &item)
		if err != nil {
			return fmt.Errorf("update order item: %w", err)
		}
		if !found {
			return common.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, s.writeFailure(ctx, "update order item", err, "order_id", orderID, "item_id", itemID)
	}

	return &item, nil
}

// RemoveOrderItem deletes one item. Removing the last item of an order is
// rejected, the same way an order cannot be created or replaced without items.
// The header lock serialises removals so the remaining count is exact.
func (s *orderService) RemoveOrderItem(ctx context.Context, orderID, itemID int64) error {
	err := s.tx.Run(ctx, "remove order item", func(tx pgx.Tx) error {
		locked, err := s.orderRepo.LockHeader(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("lock order header: %w", err)
		}
		if !locked {
			return common.ErrNotFound
		}
		found, err := s.itemRepo.Delete(ctx, tx, orderID, itemID)
		if err != nil {
			return fmt.Errorf("delete order item: %w", err)
		}
		if !found {
			return common.ErrNotFound
		}
		remaining, err := s.itemRepo.CountByOrderID(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("count order items: %w", err)
		}
		if remaining == 0 {
			return common.NewValidationError("item_id", "an order must keep at least one item")
		}
		return nil
	})
	if err != nil {
		return s.writeFailure(ctx, "remove order item", err, "order_id", orderID, "item_id", itemID)
	}
	return nil
}

func (s *orderService) insertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []models.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
		if err := s.itemRepo.Insert(ctx, tx, &items[i]); err != nil {
			return fmt.Errorf("insert order item %d: %w", i, err)
		}
	}
	return nil
}

// writeFailure classifies an error that came out of a transaction scope. The
// transaction has been rolled back by the time it is called.
func (s *orderService) writeFailure(ctx context.Context, op string, err error, attrs ...any) error {
	mapped := common.NewWriteError(op, err)
	attrs = append(attrs, "op", op, "error", err)

	switch common.Classify(mapped) {
	case common.OutcomeNotFound:
		slog.DebugContext(ctx, "order write matched nothing", attrs...)
	case common.OutcomeInvalidInput:
		slog.InfoContext(ctx, "order write rejected", attrs...)
	default:
		if errors.Is(err, context.Canceled) {
			slog.WarnContext(ctx, "order write cancelled", attrs...)
		} else {
			slog.ErrorContext(ctx, "order write rolled back", attrs...)
		}
	}
	return mapped
}

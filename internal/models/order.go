package models

import (
	"time"
)

// Order is the header row of an order aggregate. Items are owned exclusively
// by the order and are replaced as a whole on update.
type Order struct {
	ID         int64       `json:"id" db:"id"`
	CustomerID int64       `json:"customer_id" db:"customer_id"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	Items      []OrderItem `json:"items,omitempty"`
}

// OrderSummary is an order header joined with its customer's display name
type OrderSummary struct {
	ID           int64     `json:"id" db:"id"`
	CustomerID   int64     `json:"customer_id" db:"customer_id"`
	CustomerName string    `json:"customer_name" db:"customer_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// OrderDetails is the read model returned for a single order
type OrderDetails struct {
	OrderSummary
	Items []OrderItemDetails `json:"items"`
}

// OrderWrite is the request body for creating or replacing an order
type OrderWrite struct {
	CustomerID int64            `json:"customer_id"`
	Items      []OrderItemInput `json:"items"`
}

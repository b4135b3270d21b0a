package models

type OrderItem struct {
	ID        int64   `json:"id" db:"id"`
	OrderID   int64   `json:"order_id" db:"order_id"`
	ProductID int64   `json:"product_id" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitPrice float64 `json:"unit_price" db:"unit_price"`
}

// OrderItemDetails is a line item joined with its product's display name
type OrderItemDetails struct {
	ID          int64   `json:"id" db:"id"`
	ProductID   int64   `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
}

// OrderItemInput is a line item as submitted by clients. Quantity and
// UnitPrice are pointers so that omitted fields can be told apart from zero.
type OrderItemInput struct {
	ProductID int64    `json:"product_id"`
	Quantity  *int     `json:"quantity,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
}

package services

import (
	"fmt"
	"math"

	"orderdesk/internal/common"
	"orderdesk/internal/models"
)

// DefaultItemQuantity is used when an item arrives without a positive quantity
const DefaultItemQuantity = 1

// Upper bounds of the order_items columns: quantity is INTEGER and
// unit_price is NUMERIC(12,2).
const (
	MaxItemQuantity = math.MaxInt32
	MaxUnitPrice    = 1e10
)

// ValidateCustomerRef checks the customer reference carried by an order write
func ValidateCustomerRef(customerID int64) error {
	if customerID <= 0 {
		return common.NewValidationError("customer_id", "is required")
	}
	return nil
}

// ValidateItems checks a submitted item list and returns it normalized. The
// list must be non-empty; each item needs a product reference and a
// non-negative unit price. A missing or non-positive quantity becomes
// DefaultItemQuantity.
func ValidateItems(inputs []models.OrderItemInput) ([]models.OrderItem, error) {
	if len(inputs) == 0 {
		return nil, common.NewValidationError("items", "order items are required")
	}

	items := make([]models.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := validateItem(fmt.Sprintf("items[%d]", i), in)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ValidateItem checks a single item submitted outside a full order write
func ValidateItem(in models.OrderItemInput) (models.OrderItem, error) {
	return validateItem("item", in)
}

func validateItem(path string, in models.OrderItemInput) (models.OrderItem, error) {
	if in.ProductID <= 0 {
		return models.OrderItem{}, common.NewValidationError(path+".product_id", "is required")
	}
	if in.UnitPrice == nil {
		return models.OrderItem{}, common.NewValidationError(path+".unit_price", "is required")
	}
	if *in.UnitPrice < 0 {
		return models.OrderItem{}, common.NewValidationError(path+".unit_price", "cannot be negative")
	}
	if *in.UnitPrice >= MaxUnitPrice {
		return models.OrderItem{}, common.NewValidationError(path+".unit_price", "must be less than %.0f", MaxUnitPrice)
	}
	if in.Quantity != nil && *in.Quantity > MaxItemQuantity {
		return models.OrderItem{}, common.NewValidationError(path+".quantity", "cannot exceed %d", MaxItemQuantity)
	}

	quantity := DefaultItemQuantity
	if in.Quantity != nil && *in.Quantity > 0 {
		quantity = *in.Quantity
	}

	return models.OrderItem{
		ProductID: in.ProductID,
		Quantity:  quantity,
		UnitPrice: *in.UnitPrice,
	}, nil
}

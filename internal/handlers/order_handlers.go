package handlers

import (
	"net/http"

	"orderdesk/internal/common"
	"orderdesk/internal/models"
	"orderdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	var req models.OrderWrite
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), req.CustomerID, req.Items)
	if err != nil {
		return common.SendError(c, "Order", "create order", err)
	}

	return c.JSON(common.StatusFor(common.OutcomeSuccess, true), map[string]interface{}{
		"message": "Order created successfully",
		"order":   order,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	orderID, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Order", "get order", err)
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return common.SendError(c, "Order", "get order", err)
	}

	return c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	orders, err := h.orderService.ListOrders(c.Request().Context())
	if err != nil {
		return common.SendError(c, "Orders", "list orders", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateOrder handles PUT /orders/:id. The submitted items replace the
// order's current items.
func (h *OrderHandlers) UpdateOrder(c echo.Context) error {
	orderID, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Order", "update order", err)
	}

	var req models.OrderWrite
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.ReplaceOrder(c.Request().Context(), orderID, req.CustomerID, req.Items)
	if err != nil {
		return common.SendError(c, "Order", "update order", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order updated successfully",
		"order":   order,
	})
}

// DeleteOrder handles DELETE /orders/:id
func (h *OrderHandlers) DeleteOrder(c echo.Context) error {
	orderID, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Order", "delete order", err)
	}

	if err := h.orderService.DeleteOrder(c.Request().Context(), orderID); err != nil {
		return common.SendError(c, "Order", "delete order", err)
	}

	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Order deleted successfully"})
}

// ListOrderItems handles GET /orders/:id/items
func (h *OrderHandlers) ListOrderItems(c echo.Context) error {
	orderID, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Order", "list order items", err)
	}

	items, err := h.orderService.ListOrderItems(c.Request().Context(), orderID)
	if err != nil {
		return common.SendError(c, "Order", "list order items", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// AddOrderItem handles POST /orders/:id/items
func (h *OrderHandlers) AddOrderItem(c echo.Context) error {
	orderID, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Order", "add order item", err)
	}

	var req models.OrderItemInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, err := h.orderService.AddOrderItem(c.Request().Context(), orderID, req)
	if err != nil {
		return common.SendError(c, "Order", "add order item", err)
	}

	return c.JSON(common.StatusFor(common.OutcomeSuccess, true), map[string]interface{}{
		"message": "Order item added successfully",
		"item":    item,
	})
}

// UpdateOrderItem handles PUT /orders/:id/items/:itemId
func (h *OrderHandlers) UpdateOrderItem(c echo.Context) error {
	orderID, itemID, err := parseItemPath(c)
	if err != nil {
		return common.SendError(c, "Order item", "update order item", err)
	}

	var req models.OrderItemInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, err := h.orderService.UpdateOrderItem(c.Request().Context(), orderID, itemID, req)
	if err != nil {
		return common.SendError(c, "Order item", "update order item", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order item updated successfully",
		"item":    item,
	})
}

// RemoveOrderItem handles DELETE /orders/:id/items/:itemId
func (h *OrderHandlers) RemoveOrderItem(c echo.Context) error {
	orderID, itemID, err := parseItemPath(c)
	if err != nil {
		return common.SendError(c, "Order item", "remove order item", err)
	}

	if err := h.orderService.RemoveOrderItem(c.Request().Context(), orderID, itemID); err != nil {
		return common.SendError(c, "Order item", "remove order item", err)
	}

	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Order item removed successfully"})
}

func parseItemPath(c echo.Context) (int64, int64, error) {
	orderID, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return 0, 0, err
	}
	itemID, err := common.ParseID(c.Param("itemId"), "item_id")
	if err != nil {
		return 0, 0, err
	}
	return orderID, itemID, nil
}

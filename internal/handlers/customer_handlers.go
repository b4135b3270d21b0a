package handlers

import (
	"net/http"

	"orderdesk/internal/common"
	"orderdesk/internal/models"
	"orderdesk/internal/services"

	"github.com/labstack/echo/v4"
)

type CustomerHandlers struct {
	customerService services.CustomerService
}

func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

// CreateCustomer handles POST /customers
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	var req models.CustomerInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customer, err := h.customerService.CreateCustomer(c.Request().Context(), req)
	if err != nil {
		return common.SendError(c, "Customer", "create customer", err)
	}

	return c.JSON(common.StatusFor(common.OutcomeSuccess, true), map[string]interface{}{
		"message":  "Customer created successfully",
		"customer": customer,
	})
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Customer", "get customer", err)
	}

	customer, err := h.customerService.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, "Customer", "get customer", err)
	}
	return c.JSON(http.StatusOK, customer)
}

// ListCustomers handles GET /customers
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	customers, err := h.customerService.ListCustomers(c.Request().Context())
	if err != nil {
		return common.SendError(c, "Customers", "list customers", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"count":     len(customers),
	})
}

// UpdateCustomer handles PUT /customers/:id
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Customer", "update customer", err)
	}

	var req models.CustomerInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	customer, err := h.customerService.UpdateCustomer(c.Request().Context(), id, req)
	if err != nil {
		return common.SendError(c, "Customer", "update customer", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Customer updated successfully",
		"customer": customer,
	})
}

// DeleteCustomer handles DELETE /customers/:id. Customers with orders cannot
// be deleted.
func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Customer", "delete customer", err)
	}

	if err := h.customerService.DeleteCustomer(c.Request().Context(), id); err != nil {
		return common.SendError(c, "Customer", "delete customer", err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Customer deleted successfully"})
}

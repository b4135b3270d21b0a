package handlers

import (
	"net/http"

	"orderdesk/internal/common"
	"orderdesk/internal/models"
	"orderdesk/internal/services"

	"github.com/labstack/echo/v4"
)

type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req models.ProductInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	product, err := h.productService.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return common.SendError(c, "Product", "create product", err)
	}

	return c.JSON(common.StatusFor(common.OutcomeSuccess, true), map[string]interface{}{
		"message": "Product created successfully",
		"product": product,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Product", "get product", err)
	}

	product, err := h.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, "Product", "get product", err)
	}
	return c.JSON(http.StatusOK, product)
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	products, err := h.productService.ListProducts(c.Request().Context())
	if err != nil {
		return common.SendError(c, "Products", "list products", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Product", "update product", err)
	}

	var req models.ProductInput
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	product, err := h.productService.UpdateProduct(c.Request().Context(), id, req)
	if err != nil {
		return common.SendError(c, "Product", "update product", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return common.SendError(c, "Product", "delete product", err)
	}

	if err := h.productService.DeleteProduct(c.Request().Context(), id); err != nil {
		return common.SendError(c, "Product", "delete product", err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Product deleted successfully"})
}

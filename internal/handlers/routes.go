package handlers

import "github.com/labstack/echo/v4"

// RegisterOrderRoutes mounts the order aggregate and its item sub-resource
func RegisterOrderRoutes(g *echo.Group, h *OrderHandlers) {
	g.GET("/orders", h.ListOrders)
	g.POST("/orders", h.CreateOrder)
	g.GET("/orders/:id", h.GetOrder)
	g.PUT("/orders/:id", h.UpdateOrder)
	g.DELETE("/orders/:id", h.DeleteOrder)

	g.GET("/orders/:id/items", h.ListOrderItems)
	g.POST("/orders/:id/items", h.AddOrderItem)
	g.PUT("/orders/:id/items/:itemId", h.UpdateOrderItem)
	g.DELETE("/orders/:id/items/:itemId", h.RemoveOrderItem)
}

func RegisterProductRoutes(g *echo.Group, h *ProductHandlers) {
	g.GET("/products", h.ListProducts)
	g.POST("/products", h.CreateProduct)
	g.GET("/products/:id", h.GetProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.DELETE("/products/:id", h.DeleteProduct)
}

func RegisterCustomerRoutes(g *echo.Group, h *CustomerHandlers) {
	g.GET("/customers", h.ListCustomers)
	g.POST("/customers", h.CreateCustomer)
	g.GET("/customers/:id", h.GetCustomer)
	g.PUT("/customers/:id", h.UpdateCustomer)
	g.DELETE("/customers/:id", h.DeleteCustomer)
}

// RegisterHealthRoutes mounts the probes outside any versioned group
func RegisterHealthRoutes(e *echo.Echo, h *HealthHandlers) {
	e.GET("/health", h.LivenessCheck)
	e.GET("/health/ready", h.ReadinessCheck)
	e.GET("/health/detailed", h.DetailedHealthCheck)
}

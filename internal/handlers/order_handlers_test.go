package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orderdesk/internal/common"
	"orderdesk/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, customerID int64, items []models.OrderItemInput) (*models.Order, error) {
	args := m.Called(ctx, customerID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ReplaceOrder(ctx context.Context, orderID, customerID int64, items []models.OrderItemInput) (*models.Order, error) {
	args := m.Called(ctx, orderID, customerID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID int64) (*models.OrderDetails, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderDetails), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context) ([]models.OrderSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.OrderSummary), args.Error(1)
}

func (m *MockOrderService) ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItemDetails, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderItemDetails), args.Error(1)
}

func (m *MockOrderService) AddOrderItem(ctx context.Context, orderID int64, input models.OrderItemInput) (*models.OrderItem, error) {
	args := m.Called(ctx, orderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItem), args.Error(1)
}

func (m *MockOrderService) UpdateOrderItem(ctx context.Context, orderID, itemID int64, input models.OrderItemInput) (*models.OrderItem, error) {
	args := m.Called(ctx, orderID, itemID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItem), args.Error(1)
}

func (m *MockOrderService) RemoveOrderItem(ctx context.Context, orderID, itemID int64) error {
	args := m.Called(ctx, orderID, itemID)
	return args.Error(0)
}

func newOrderServer(svc *MockOrderService) *echo.Echo {
	e := echo.New()
	RegisterOrderRoutes(e.Group("/v1"), NewOrderHandlers(svc))
	return e
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateOrder_Created(t *testing.T) {
	svc := new(MockOrderService)
	created := &models.Order{
		ID:         101,
		CustomerID: 7,
		CreatedAt:  time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{ID: 1001, OrderID: 101, ProductID: 1, Quantity: 2, UnitPrice: 9.99},
		},
	}
	svc.On("CreateOrder", mock.Anything, int64(7), mock.MatchedBy(func(items []models.OrderItemInput) bool {
		return len(items) == 1 && items[0].ProductID == 1 && *items[0].Quantity == 2 && *items[0].UnitPrice == 9.99
	})).Return(created, nil)

	rec := serve(newOrderServer(svc), http.MethodPost, "/v1/orders",
		`{"customer_id":7,"items":[{"product_id":1,"quantity":2,"unit_price":9.99}]}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Message string       `json:"message"`
		Order   models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(101), body.Order.ID)
	assert.Equal(t, int64(1001), body.Order.Items[0].ID)
	svc.AssertExpectations(t)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	svc := new(MockOrderService)

	rec := serve(newOrderServer(svc), http.MethodPost, "/v1/orders", `{"customer_id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CLIENT_ERROR", decodeError(t, rec).Error.Code)
	svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_ValidationError(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("CreateOrder", mock.Anything, int64(7), mock.Anything).
		Return(nil, common.NewValidationError("items", "at least one item is required"))

	rec := serve(newOrderServer(svc), http.MethodPost, "/v1/orders", `{"customer_id":7,"items":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "at least one item is required", resp.Error.Details["items"])
}

func TestCreateOrder_WriteFailureHidesCause(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("CreateOrder", mock.Anything, int64(7), mock.Anything).
		Return(nil, common.NewWriteError("create order", errors.New("password authentication failed")))

	rec := serve(newOrderServer(svc), http.MethodPost, "/v1/orders",
		`{"customer_id":7,"items":[{"product_id":1,"unit_price":1}]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "SERVER_ERROR", resp.Error.Code)
	assert.Equal(t, "Failed to create order", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestOrderRoutes_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		setup      func(svc *MockOrderService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "replace missing order",
			method: http.MethodPut,
			path:   "/v1/orders/404",
			body:   `{"customer_id":7,"items":[{"product_id":1,"unit_price":1}]}`,
			setup: func(svc *MockOrderService) {
				svc.On("ReplaceOrder", mock.Anything, int64(404), int64(7), mock.Anything).Return(nil, common.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:   "delete missing order",
			method: http.MethodDelete,
			path:   "/v1/orders/9",
			setup: func(svc *MockOrderService) {
				svc.On("DeleteOrder", mock.Anything, int64(9)).Return(common.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "non numeric id",
			method:     http.MethodGet,
			path:       "/v1/orders/abc",
			setup:      func(svc *MockOrderService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:   "read failure",
			method: http.MethodGet,
			path:   "/v1/orders/5",
			setup: func(svc *MockOrderService) {
				svc.On("GetOrder", mock.Anything, int64(5)).Return(nil, fmt.Errorf("get order 5: %w", errors.New("conn closed")))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "SERVER_ERROR",
		},
		{
			name:   "remove last item",
			method: http.MethodDelete,
			path:   "/v1/orders/5/items/50",
			setup: func(svc *MockOrderService) {
				svc.On("RemoveOrderItem", mock.Anything, int64(5), int64(50)).
					Return(common.NewValidationError("item_id", "an order must keep at least one item"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:   "update unknown item",
			method: http.MethodPut,
			path:   "/v1/orders/5/items/51",
			body:   `{"product_id":2,"unit_price":3}`,
			setup: func(svc *MockOrderService) {
				svc.On("UpdateOrderItem", mock.Anything, int64(5), int64(51), mock.Anything).Return(nil, common.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			tt.setup(svc)

			rec := serve(newOrderServer(svc), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Error.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestUpdateOrder_Success(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ReplaceOrder", mock.Anything, int64(3), int64(8), mock.Anything).
		Return(&models.Order{ID: 3, CustomerID: 8}, nil)

	rec := serve(newOrderServer(svc), http.MethodPut, "/v1/orders/3",
		`{"customer_id":8,"items":[{"product_id":4,"unit_price":1.25}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Order updated successfully")
}

func TestDeleteOrder_Success(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("DeleteOrder", mock.Anything, int64(3)).Return(nil)

	rec := serve(newOrderServer(svc), http.MethodDelete, "/v1/orders/3", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp common.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Order deleted successfully", resp.Message)
}

func TestGetOrder_ReturnsDetails(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("GetOrder", mock.Anything, int64(101)).Return(&models.OrderDetails{
		OrderSummary: models.OrderSummary{ID: 101, CustomerID: 7, CustomerName: "Ana Souza"},
		Items:        []models.OrderItemDetails{{ID: 1001, ProductID: 1, ProductName: "Coffee beans", Quantity: 2, UnitPrice: 9.99}},
	}, nil)

	rec := serve(newOrderServer(svc), http.MethodGet, "/v1/orders/101", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body models.OrderDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ana Souza", body.CustomerName)
	assert.Equal(t, "Coffee beans", body.Items[0].ProductName)
}

func TestListOrders(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ListOrders", mock.Anything).Return([]models.OrderSummary{{ID: 1}, {ID: 2}}, nil)

	rec := serve(newOrderServer(svc), http.MethodGet, "/v1/orders", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
}

func TestAddOrderItem_Created(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("AddOrderItem", mock.Anything, int64(5), mock.MatchedBy(func(in models.OrderItemInput) bool {
		return in.ProductID == 6 && in.Quantity == nil
	})).Return(&models.OrderItem{ID: 60, OrderID: 5, ProductID: 6, Quantity: 1, UnitPrice: 4}, nil)

	rec := serve(newOrderServer(svc), http.MethodPost, "/v1/orders/5/items", `{"product_id":6,"unit_price":4}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity":1`)
}

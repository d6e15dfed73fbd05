package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/dto"
	"github.com/XavierSoh/adigo-bnd-sub003/pkg/response"
)

// MockPurchaseService is a mock implementation of PurchaseService
type MockPurchaseService struct {
	InitiateFunc               func(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error)
	ConfirmPaymentFunc         func(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error)
	CancelFunc                 func(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error)
	RefundFunc                 func(ctx context.Context, purchaseID, customerID, reason string) (*dto.PurchaseResponse, error)
	GetPurchaseFunc            func(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error)
	GetPurchaseByReferenceFunc func(ctx context.Context, reference, customerID string) (*dto.PurchaseResponse, error)
	ListCustomerPurchasesFunc  func(ctx context.Context, customerID string, page, pageSize int) (*dto.PaginatedResponse, error)
	ExpireStalePendingFunc     func(ctx context.Context, limit int) (int64, error)
}

func (m *MockPurchaseService) Initiate(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if m.InitiateFunc != nil {
		return m.InitiateFunc(ctx, customerID, req)
	}
	return nil, nil
}

func (m *MockPurchaseService) ConfirmPayment(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error) {
	if m.ConfirmPaymentFunc != nil {
		return m.ConfirmPaymentFunc(ctx, purchaseID, customerID, req)
	}
	return nil, nil
}

func (m *MockPurchaseService) Cancel(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, purchaseID, customerID)
	}
	return nil, nil
}

func (m *MockPurchaseService) Refund(ctx context.Context, purchaseID, customerID, reason string) (*dto.PurchaseResponse, error) {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, purchaseID, customerID, reason)
	}
	return nil, nil
}

func (m *MockPurchaseService) GetPurchase(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error) {
	if m.GetPurchaseFunc != nil {
		return m.GetPurchaseFunc(ctx, purchaseID, customerID)
	}
	return nil, nil
}

func (m *MockPurchaseService) GetPurchaseByReference(ctx context.Context, reference, customerID string) (*dto.PurchaseResponse, error) {
	if m.GetPurchaseByReferenceFunc != nil {
		return m.GetPurchaseByReferenceFunc(ctx, reference, customerID)
	}
	return nil, nil
}

func (m *MockPurchaseService) ListCustomerPurchases(ctx context.Context, customerID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	if m.ListCustomerPurchasesFunc != nil {
		return m.ListCustomerPurchasesFunc(ctx, customerID, page, pageSize)
	}
	return &dto.PaginatedResponse{}, nil
}

func (m *MockPurchaseService) ExpireStalePending(ctx context.Context, limit int) (int64, error) {
	if m.ExpireStalePendingFunc != nil {
		return m.ExpireStalePendingFunc(ctx, limit)
	}
	return 0, nil
}

func setupPurchaseRouter(h *PurchaseHandler, customerID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if customerID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", customerID)
			c.Next()
		})
	}

	purchases := router.Group("/purchases")
	{
		purchases.POST("", h.Initiate)
		purchases.GET("", h.List)
		purchases.GET("/:id", h.Get)
		purchases.POST("/:id/confirm", h.ConfirmPayment)
		purchases.POST("/:id/cancel", h.Cancel)
		purchases.POST("/:id/refund", h.Refund)
	}

	return router
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(body, &resp))
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}

func TestPurchaseHandler_Initiate(t *testing.T) {
	tests := []struct {
		name           string
		customerID     string
		request        *dto.InitiatePurchaseRequest
		mockFunc       func(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:       "successful initiation",
			customerID: "cust-001",
			request:    &dto.InitiatePurchaseRequest{TicketTypeID: "tt-001", Quantity: 2},
			mockFunc: func(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error) {
				return &dto.PurchaseResponse{
					ID:        "pur-001",
					Reference: "PUR-abc12345",
					Status:    "pending",
					CreatedAt: time.Now(),
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unauthorized",
			customerID:     "",
			request:        &dto.InitiatePurchaseRequest{TicketTypeID: "tt-001", Quantity: 2},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:       "sold out",
			customerID: "cust-001",
			request:    &dto.InitiatePurchaseRequest{TicketTypeID: "tt-001", Quantity: 2},
			mockFunc: func(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error) {
				return nil, domain.ErrInsufficientInventory
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INSUFFICIENT_INVENTORY",
		},
		{
			name:       "sale closed",
			customerID: "cust-001",
			request:    &dto.InitiatePurchaseRequest{TicketTypeID: "tt-001", Quantity: 2},
			mockFunc: func(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error) {
				return nil, domain.ErrSaleClosed
			},
			expectedStatus: http.StatusGone,
			expectedCode:   "SALE_CLOSED",
		},
		{
			name:       "max per order",
			customerID: "cust-001",
			request:    &dto.InitiatePurchaseRequest{TicketTypeID: "tt-001", Quantity: 20},
			mockFunc: func(ctx context.Context, customerID string, req *dto.InitiatePurchaseRequest) (*dto.PurchaseResponse, error) {
				return nil, domain.ErrMaxPerOrderExceeded
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "MAX_PER_ORDER_EXCEEDED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPurchaseService{InitiateFunc: tt.mockFunc}
			router := setupPurchaseRouter(NewPurchaseHandler(mockService), tt.customerID)

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeErrorCode(t, w.Body.Bytes()))
			}
		})
	}
}

func TestPurchaseHandler_ConfirmPayment(t *testing.T) {
	tests := []struct {
		name           string
		request        *dto.ConfirmPaymentRequest
		mockFunc       func(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful confirmation",
			request: &dto.ConfirmPaymentRequest{PaymentRef: "pay-123", PaymentStatus: "paid"},
			mockFunc: func(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error) {
				return &dto.PurchaseResponse{ID: purchaseID, Status: "confirmed", PaymentRef: req.PaymentRef}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "capacity lost",
			request: &dto.ConfirmPaymentRequest{PaymentRef: "pay-123", PaymentStatus: "paid"},
			mockFunc: func(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error) {
				return nil, domain.ErrInsufficientInventory
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INSUFFICIENT_INVENTORY",
		},
		{
			name:    "already cancelled",
			request: &dto.ConfirmPaymentRequest{PaymentRef: "pay-123", PaymentStatus: "paid"},
			mockFunc: func(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error) {
				return nil, domain.ErrPurchaseCancelled
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INVALID_STATE",
		},
		{
			name:    "failed payment leaves purchase pending",
			request: &dto.ConfirmPaymentRequest{PaymentRef: "pay-456", PaymentStatus: "failed"},
			mockFunc: func(ctx context.Context, purchaseID, customerID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error) {
				return &dto.PurchaseResponse{ID: purchaseID, Status: "pending", PaymentStatus: "failed", PaymentRef: req.PaymentRef}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing payment ref",
			request:        &dto.ConfirmPaymentRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown payment status",
			request:        &dto.ConfirmPaymentRequest{PaymentRef: "pay-123", PaymentStatus: "maybe"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPurchaseService{ConfirmPaymentFunc: tt.mockFunc}
			router := setupPurchaseRouter(NewPurchaseHandler(mockService), "cust-001")

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/purchases/pur-001/confirm", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeErrorCode(t, w.Body.Bytes()))
			}
		})
	}
}

func TestPurchaseHandler_Refund_NotRefundable(t *testing.T) {
	mockService := &MockPurchaseService{
		RefundFunc: func(ctx context.Context, purchaseID, customerID, reason string) (*dto.PurchaseResponse, error) {
			return nil, domain.ErrNotRefundable
		},
	}
	router := setupPurchaseRouter(NewPurchaseHandler(mockService), "cust-001")

	req := httptest.NewRequest(http.MethodPost, "/purchases/pur-001/refund", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPurchaseHandler_Get_NotFound(t *testing.T) {
	mockService := &MockPurchaseService{
		GetPurchaseFunc: func(ctx context.Context, purchaseID, customerID string) (*dto.PurchaseResponse, error) {
			return nil, domain.ErrPurchaseNotFound
		},
	}
	router := setupPurchaseRouter(NewPurchaseHandler(mockService), "cust-001")

	req := httptest.NewRequest(http.MethodGet, "/purchases/missing", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

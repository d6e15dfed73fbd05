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

	"github.com/XavierSoh/adigo-bnd-sub003/internal/domain"
	"github.com/XavierSoh/adigo-bnd-sub003/internal/dto"
)

// MockValidationService is a mock implementation of ValidationService
type MockValidationService struct {
	ValidateTicketFunc func(ctx context.Context, staffID string, req *dto.ValidateTicketRequest) (*dto.ValidationResponse, error)
	ValidateByIDFunc   func(ctx context.Context, purchaseID, staffID string) (*dto.ValidationResponse, error)
}

func (m *MockValidationService) ValidateTicket(ctx context.Context, staffID string, req *dto.ValidateTicketRequest) (*dto.ValidationResponse, error) {
	if m.ValidateTicketFunc != nil {
		return m.ValidateTicketFunc(ctx, staffID, req)
	}
	return nil, nil
}

func (m *MockValidationService) ValidateByID(ctx context.Context, purchaseID, staffID string) (*dto.ValidationResponse, error) {
	if m.ValidateByIDFunc != nil {
		return m.ValidateByIDFunc(ctx, purchaseID, staffID)
	}
	return nil, nil
}

func setupValidationRouter(h *ValidationHandler, staffID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if staffID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", staffID)
			c.Next()
		})
	}

	router.POST("/validations", h.ValidateTicket)
	router.POST("/purchases/:id/validate", h.ValidateByID)

	return router
}

func TestValidationHandler_ValidateTicket(t *testing.T) {
	tests := []struct {
		name           string
		staffID        string
		request        *dto.ValidateTicketRequest
		mockFunc       func(ctx context.Context, staffID string, req *dto.ValidateTicketRequest) (*dto.ValidationResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful validation",
			staffID: "staff-001",
			request: &dto.ValidateTicketRequest{Reference: "PUR-abc12345"},
			mockFunc: func(ctx context.Context, staffID string, req *dto.ValidateTicketRequest) (*dto.ValidationResponse, error) {
				return &dto.ValidationResponse{
					PurchaseID:  "pur-001",
					Reference:   req.Reference,
					Status:      "used",
					ValidatedBy: staffID,
					UsedAt:      time.Now(),
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "second scan conflicts",
			staffID: "staff-001",
			request: &dto.ValidateTicketRequest{Reference: "PUR-abc12345"},
			mockFunc: func(ctx context.Context, staffID string, req *dto.ValidateTicketRequest) (*dto.ValidationResponse, error) {
				return nil, domain.ErrAlreadyUsed
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "ALREADY_USED",
		},
		{
			name:    "pending ticket rejected",
			staffID: "staff-001",
			request: &dto.ValidateTicketRequest{Reference: "PUR-abc12345"},
			mockFunc: func(ctx context.Context, staffID string, req *dto.ValidateTicketRequest) (*dto.ValidationResponse, error) {
				return nil, domain.ErrPurchaseNotConfirmed
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INVALID_STATE",
		},
		{
			name:    "unknown reference",
			staffID: "staff-001",
			request: &dto.ValidateTicketRequest{Reference: "PUR-unknown1"},
			mockFunc: func(ctx context.Context, staffID string, req *dto.ValidateTicketRequest) (*dto.ValidationResponse, error) {
				return nil, domain.ErrPurchaseNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unauthorized",
			staffID:        "",
			request:        &dto.ValidateTicketRequest{Reference: "PUR-abc12345"},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "missing reference",
			staffID:        "staff-001",
			request:        &dto.ValidateTicketRequest{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockValidationService{ValidateTicketFunc: tt.mockFunc}
			router := setupValidationRouter(NewValidationHandler(mockService), tt.staffID)

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/validations", bytes.NewBuffer(body))
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

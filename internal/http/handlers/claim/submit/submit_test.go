package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ouedraogodev/pronos226/internal/http/middlewarectx"
	"github.com/ouedraogodev/pronos226/internal/models"
	claimservice "github.com/ouedraogodev/pronos226/internal/services/claim"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Submit(ctx context.Context, userUID string, req models.DummyClaim) (*models.PaymentClaim, error) {
	args := m.Called(ctx, userUID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentClaim), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSubmitHandler_ServeHTTP(t *testing.T) {
	validBody := models.DummyClaim{
		TargetTier:  "vip",
		Period:      "monthly",
		Channel:     "orange_money",
		PhoneNumber: "+22670000000",
		ProofURL:    "https://cdn.example.com/proof.png",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		withUser       bool
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:        "valid claim",
			requestBody: validBody,
			withUser:    true,
			setupMock: func(m *ServiceMock) {
				m.On("Submit", mock.Anything, "user-1", validBody).
					Return(&models.PaymentClaim{ID: "claim-1", Amount: 5000, Status: models.ClaimPending}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "missing user in context",
			requestBody:    validBody,
			withUser:       false,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "user identification missing",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			withUser:       true,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name: "validation error - admin tier is not purchasable",
			requestBody: models.DummyClaim{
				TargetTier:  "admin",
				Period:      "monthly",
				Channel:     "orange_money",
				PhoneNumber: "+22670000000",
				ProofURL:    "https://cdn.example.com/proof.png",
			},
			withUser:       true,
			setupMock:      func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field TargetTier must be one of: standard vip",
		},
		{
			name:        "plan not configured",
			requestBody: validBody,
			withUser:    true,
			setupMock: func(m *ServiceMock) {
				m.On("Submit", mock.Anything, "user-1", validBody).
					Return(nil, claimservice.ErrUnknownPlan).Once()
			},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "requested plan is not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			tt.setupMock(serviceMock)
			handler := New(newNoopLogger(), serviceMock)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/claims", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, "user-1")
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

package approve

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ouedraogodev/pronos226/internal/models"
	claimservice "github.com/ouedraogodev/pronos226/internal/services/claim"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Approve(ctx context.Context, id string, note *string) (*models.PaymentClaim, error) {
	args := m.Called(ctx, id, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentClaim), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func doRequest(handler *Handler, claimID string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/claims/"+claimID+"/approve", bytes.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", claimID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestApproveHandler_ServeHTTP(t *testing.T) {
	approved := &models.PaymentClaim{
		ID:         "claim-1",
		UserUID:    "user-1",
		TargetTier: models.TierVIP,
		Status:     models.ClaimApproved,
	}

	tests := []struct {
		name           string
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name: "success",
			setupMock: func(m *ServiceMock) {
				m.On("Approve", mock.Anything, "claim-1", (*string)(nil)).
					Return(approved, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name: "claim not found",
			setupMock: func(m *ServiceMock) {
				m.On("Approve", mock.Anything, "claim-1", (*string)(nil)).
					Return(nil, claimservice.ErrClaimNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "claim not found",
		},
		{
			name: "already decided",
			setupMock: func(m *ServiceMock) {
				m.On("Approve", mock.Anything, "claim-1", (*string)(nil)).
					Return(nil, claimservice.ErrInvalidTransition).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantStatus:     "Error",
			wantError:      "claim already decided",
		},
		{
			name: "partial activation keeps decided claim in response",
			setupMock: func(m *ServiceMock) {
				m.On("Approve", mock.Anything, "claim-1", (*string)(nil)).
					Return(approved, &claimservice.PartialActivationError{ClaimID: "claim-1", Err: assert.AnError}).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "claim approved but activation failed, redrive required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			tt.setupMock(serviceMock)
			handler := New(newNoopLogger(), serviceMock)

			rec := doRequest(handler, "claim-1", nil)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}
			if tt.name == "partial activation keeps decided claim in response" {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "approved", data["status"])
			}

			serviceMock.AssertExpectations(t)
		})
	}

	t.Run("note is forwarded to the service", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		note := "paiement vérifié"
		serviceMock.On("Approve", mock.Anything, "claim-1", &note).
			Return(approved, nil).Once()
		handler := New(newNoopLogger(), serviceMock)

		body, _ := json.Marshal(Request{Note: &note})
		rec := doRequest(handler, "claim-1", body)
		assert.Equal(t, http.StatusOK, rec.Code)
		serviceMock.AssertExpectations(t)
	})
}

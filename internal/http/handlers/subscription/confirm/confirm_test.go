package confirm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	services "github.com/magabrotheeeer/newsletter/internal/services/subscription"
)

const testToken = "abcdeABCDE0123456789xyzXY"

// MockService реализует интерфейс confirm.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Confirm(ctx context.Context, subscriptionToken string) error {
	return m.Called(ctx, subscriptionToken).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfirmHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "known token",
			url:  "/subscriptions/confirm?subscription_token=" + testToken,
			setupMock: func(m *MockService) {
				m.On("Confirm", mock.Anything, testToken).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name:           "missing token",
			url:            "/subscriptions/confirm",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field SubscriptionToken is a required field"}`,
		},
		{
			name:           "non alphanumeric token",
			url:            "/subscriptions/confirm?subscription_token=abc-def",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field SubscriptionToken can contain only numbers and letters"}`,
		},
		{
			name:           "wrong token length",
			url:            "/subscriptions/confirm?subscription_token=abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"malformed subscription token"}`,
		},
		{
			name: "unknown token",
			url:  "/subscriptions/confirm?subscription_token=" + testToken,
			setupMock: func(m *MockService) {
				m.On("Confirm", mock.Anything, testToken).
					Return(fmt.Errorf("services.Confirm: %w", services.ErrTokenNotFound)).Once()
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unknown subscription token"}`,
		},
		{
			name: "storage failure",
			url:  "/subscriptions/confirm?subscription_token=" + testToken,
			setupMock: func(m *MockService) {
				m.On("Confirm", mock.Anything, testToken).
					Return(fmt.Errorf("services.Confirm: %w: %w", services.ErrStorage, errors.New("db down"))).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not confirm subscription"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}

func TestConfirmHandler_Idempotent(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Confirm", mock.Anything, testToken).Return(nil).Twice()
	handler := New(newNoopLogger(), mockService)

	for range 2 {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/subscriptions/confirm?subscription_token="+testToken, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	mockService.AssertExpectations(t)
}

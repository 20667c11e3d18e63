package create

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	services "github.com/magabrotheeeer/newsletter/internal/services/subscription"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Subscribe(ctx context.Context, name, email string) error {
	return m.Called(ctx, name, email).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "valid form data",
			body: "name=le%20guin&email=ursula_le_guin%40gmail.com",
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, "le guin", "ursula_le_guin@gmail.com").Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name: "extra form fields are ignored",
			body: "name=le%20guin&email=ursula_le_guin%40gmail.com&utm_source=x",
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, "le guin", "ursula_le_guin@gmail.com").Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name:           "empty name",
			body:           "name=&email=ursula_le_guin%40gmail.com",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Name is a required field"}`,
		},
		{
			name:           "missing email",
			body:           "name=le%20guin",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Email is a required field"}`,
		},
		{
			name:           "missing both name and email",
			body:           "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Name is a required field, field Email is a required field"}`,
		},
		{
			name:           "malformed body",
			body:           "name=%zz",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "invalid email",
			body: "name=Ursula&email=definitely-not-an-email",
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, "Ursula", "definitely-not-an-email").
					Return(fmt.Errorf("services.Subscribe: %w", services.ErrInvalidInput)).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid name or email"}`,
		},
		{
			name: "already subscribed",
			body: "name=le%20guin&email=ursula_le_guin%40gmail.com",
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, "le guin", "ursula_le_guin@gmail.com").
					Return(fmt.Errorf("services.Subscribe: %w", services.ErrDuplicateSubscriber)).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"email is already subscribed"}`,
		},
		{
			name: "storage failure",
			body: "name=le%20guin&email=ursula_le_guin%40gmail.com",
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, "le guin", "ursula_le_guin@gmail.com").
					Return(fmt.Errorf("services.Subscribe: %w: %w", services.ErrStorage, errors.New("db down"))).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create subscription"}`,
		},
		{
			name: "dispatch failure",
			body: "name=le%20guin&email=ursula_le_guin%40gmail.com",
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, "le guin", "ursula_le_guin@gmail.com").
					Return(fmt.Errorf("services.Subscribe: %w", services.ErrDispatch)).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not send confirmation email"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}

package start

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/examprep/entitlement-service/internal/http/middlewarectx"
	"github.com/examprep/entitlement-service/internal/services/entitlement"
)

// MockService реализует интерфейс start.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ResolvePaperAccess(ctx context.Context, userUID string, paperID int) (entitlement.Decision, error) {
	args := m.Called(ctx, userUID, paperID)
	return args.Get(0).(entitlement.Decision), args.Error(1)
}

func TestStartHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		paperID        string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "доступ разрешён",
			paperID: "42",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ResolvePaperAccess", mock.Anything, "uid-1", 42).
					Return(entitlement.Decision{Allowed: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"allowed":true`,
		},
		{
			name:    "отказ с причиной плана",
			paperID: "42",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ResolvePaperAccess", mock.Anything, "uid-1", 42).
					Return(entitlement.Decision{Allowed: false, Reason: "your Standard plan does not cover WAEC"}, nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `your Standard plan does not cover WAEC`,
		},
		{
			name:           "некорректный id в URL",
			paperID:        "abc",
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid paper id`,
		},
		{
			name:           "без пользователя в контексте",
			paperID:        "42",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:    "ошибка резолвера",
			paperID: "42",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ResolvePaperAccess", mock.Anything, "uid-1", 42).
					Return(entitlement.Decision{}, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not resolve access`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/papers/"+tt.paperID+"/start", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.paperID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

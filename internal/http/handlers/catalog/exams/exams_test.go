package exams

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/examprep/entitlement-service/internal/http/middlewarectx"
	"github.com/examprep/entitlement-service/internal/models"
)

// MockService реализует интерфейс exams.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ListExams(ctx context.Context, userUID string) ([]*models.Exam, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Exam), args.Error(1)
}

func TestExamsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "список экзаменов по плану",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ListExams", mock.Anything, "uid-1").Return([]*models.Exam{
					{ID: 1, Name: "JAMB"},
					{ID: 2, Name: "WAEC"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"JAMB"`,
		},
		{
			name:    "пустой каталог",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ListExams", mock.Anything, "uid-1").Return([]*models.Exam{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "без пользователя в контексте",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:    "ошибка сервиса",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ListExams", mock.Anything, "uid-1").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not load exams`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/catalog/exams", nil)
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

package onboarding

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/examprep/entitlement-service/internal/http/middlewarectx"
	"github.com/examprep/entitlement-service/internal/services/billing"
	"github.com/examprep/entitlement-service/internal/storage/repository"
)

// MockService реализует интерфейс onboarding.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Onboard(ctx context.Context, userUID string, planID int, organizationName string) (*billing.OnboardResult, error) {
	args := m.Called(ctx, userUID, planID, organizationName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.OnboardResult), args.Error(1)
}

func TestOnboardingHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "бесплатный план активируется сразу",
			body:    `{"plan_id": 1}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Onboard", mock.Anything, "uid-1", 1, "").
					Return(&billing.OnboardResult{PlanID: 1}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"payment_needed":false`,
		},
		{
			name:    "платный план возвращает ссылку заказа",
			body:    `{"plan_id": 2}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Onboard", mock.Anything, "uid-1", 2, "").
					Return(&billing.OnboardResult{PlanID: 2, PaymentNeeded: true, Reference: "ref-1"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"reference":"ref-1"`,
		},
		{
			name:    "организационный план передаёт название организации",
			body:    `{"plan_id": 4, "organization_name": "Lagos Prep School"}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Onboard", mock.Anything, "uid-1", 4, "Lagos Prep School").
					Return(&billing.OnboardResult{PlanID: 4, PaymentNeeded: true, Reference: "ref-2"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"plan_id":4`,
		},
		{
			name:    "неизвестный план",
			body:    `{"plan_id": 99}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Onboard", mock.Anything, "uid-1", 99, "").
					Return(nil, repository.ErrPlanNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `plan not found`,
		},
		{
			name:           "отсутствие plan_id не проходит валидацию",
			body:           `{}`,
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `PlanID`,
		},
		{
			name:           "без пользователя в контексте",
			body:           `{"plan_id": 1}`,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/onboarding", strings.NewReader(tt.body))
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

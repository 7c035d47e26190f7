package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/examprep/entitlement-service/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*repository.ExpiryInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.ExpiryInfo), args.Error(1)
}
func (m *RepoMock) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestProcessOnce(t *testing.T) {
	endDate := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	t.Run("publishes one event per expiring subscription", func(t *testing.T) {
		repo := new(RepoMock)
		pub := new(PublisherMock)
		repo.On("DeactivateExpired", mock.Anything, mock.Anything).Return(2, nil)
		repo.On("FindSubscriptionsExpiringTomorrow", mock.Anything).Return([]*repository.ExpiryInfo{
			{Email: "a@example.com", Username: "a", PlanName: "Standard", EndDate: endDate},
			{Email: "b@example.com", Username: "b", PlanName: "Campus", EndDate: endDate},
		}, nil)
		pub.On("Publish", "subscriptions.expiring", mock.MatchedBy(func(e ExpiryEvent) bool {
			return e.Event == "subscription.expiring" && e.EndDate.Equal(endDate)
		})).Return(nil).Twice()

		svc := New(repo, pub, newNoopLogger())
		require.NoError(t, svc.ProcessOnce(context.Background()))
		pub.AssertExpectations(t)
	})

	t.Run("publish failure for one subscriber does not stop the pass", func(t *testing.T) {
		repo := new(RepoMock)
		pub := new(PublisherMock)
		repo.On("DeactivateExpired", mock.Anything, mock.Anything).Return(0, nil)
		repo.On("FindSubscriptionsExpiringTomorrow", mock.Anything).Return([]*repository.ExpiryInfo{
			{Email: "a@example.com", Username: "a", PlanName: "Standard", EndDate: endDate},
			{Email: "b@example.com", Username: "b", PlanName: "Campus", EndDate: endDate},
		}, nil)
		pub.On("Publish", "subscriptions.expiring", mock.Anything).
			Return(errors.New("amqp down")).Once()
		pub.On("Publish", "subscriptions.expiring", mock.Anything).
			Return(nil).Once()

		svc := New(repo, pub, newNoopLogger())
		require.NoError(t, svc.ProcessOnce(context.Background()))
		pub.AssertNumberOfCalls(t, "Publish", 2)
	})

	t.Run("storage failure aborts the pass", func(t *testing.T) {
		repo := new(RepoMock)
		pub := new(PublisherMock)
		repo.On("DeactivateExpired", mock.Anything, mock.Anything).
			Return(0, errors.New("db down"))

		svc := New(repo, pub, newNoopLogger())
		assert.Error(t, svc.ProcessOnce(context.Background()))
		pub.AssertNotCalled(t, "Publish")
	})
}

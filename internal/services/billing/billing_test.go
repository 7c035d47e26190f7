package billing

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

	"github.com/examprep/entitlement-service/internal/models"
	"github.com/examprep/entitlement-service/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetPlan(ctx context.Context, planID int) (*models.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) Onboard(ctx context.Context, p repository.OnboardingParams) error {
	return m.Called(ctx, p).Error(0)
}
func (m *RepoMock) FulfillOrder(ctx context.Context, reference string, now time.Time) (*models.Order, bool, error) {
	args := m.Called(ctx, reference, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Order), args.Bool(1), args.Error(2)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newService(repo *RepoMock, cache *CacheMock, pub *PublisherMock) *Service {
	var p Publisher
	if pub != nil {
		p = pub
	}
	svc := New(repo, cache, p, newNoopLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestOnboard_FreePlan(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	freePlan := &models.Plan{ID: 1, Name: "Free", Price: 0, Interval: models.IntervalMonthly, Type: models.PlanTypeStudent}

	repo.On("GetPlan", mock.Anything, 1).Return(freePlan, nil)
	repo.On("Onboard", mock.Anything, mock.MatchedBy(func(p repository.OnboardingParams) bool {
		return p.UserUID == "uid-1" &&
			p.Active &&
			p.OrderReference == "" &&
			p.EndDate != nil &&
			p.EndDate.Equal(testNow.AddDate(0, 1, 0))
	})).Return(nil).Once()
	cache.On("Invalidate", "profile:uid-1").Return(nil).Once()

	svc := newService(repo, cache, nil)
	result, err := svc.Onboard(context.Background(), "uid-1", 1, "")
	require.NoError(t, err)
	assert.False(t, result.PaymentNeeded)
	assert.Empty(t, result.Reference)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestOnboard_PaidPlanCreatesPendingOrder(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	paidPlan := &models.Plan{ID: 2, Name: "Standard", Price: 1500, Interval: models.IntervalQuarter, Type: models.PlanTypeStudent}

	repo.On("GetPlan", mock.Anything, 2).Return(paidPlan, nil)
	repo.On("Onboard", mock.Anything, mock.MatchedBy(func(p repository.OnboardingParams) bool {
		return !p.Active && p.EndDate == nil && p.OrderReference != ""
	})).Return(nil).Once()
	cache.On("Invalidate", "profile:uid-1").Return(nil).Once()

	svc := newService(repo, cache, nil)
	result, err := svc.Onboard(context.Background(), "uid-1", 2, "")
	require.NoError(t, err)
	assert.True(t, result.PaymentNeeded)
	assert.NotEmpty(t, result.Reference)
}

func TestOnboard_OrganizationPlanRequiresName(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	orgPlan := &models.Plan{ID: 4, Name: "Campus", Price: 50000, Interval: models.IntervalYearly, Type: models.PlanTypeOrganization}
	repo.On("GetPlan", mock.Anything, 4).Return(orgPlan, nil)

	svc := newService(repo, cache, nil)
	_, err := svc.Onboard(context.Background(), "uid-1", 4, "")
	require.Error(t, err)
	repo.AssertNotCalled(t, "Onboard")
}

func TestOnboard_UnknownPlan(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("GetPlan", mock.Anything, 99).Return(nil, repository.ErrPlanNotFound)

	svc := newService(repo, cache, nil)
	_, err := svc.Onboard(context.Background(), "uid-1", 99, "")
	assert.ErrorIs(t, err, repository.ErrPlanNotFound)
}

func TestFulfill_PublishesOnceAndInvalidatesCache(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	pub := new(PublisherMock)
	order := &models.Order{ID: 1, Reference: "ref-1", UserUID: "uid-1", PlanID: 2, Amount: 1500, Status: models.OrderSuccessful}

	repo.On("FulfillOrder", mock.Anything, "ref-1", testNow).Return(order, true, nil).Once()
	cache.On("Invalidate", "profile:uid-1").Return(nil).Once()
	pub.On("Publish", "payments.fulfilled", mock.MatchedBy(func(e PaymentEvent) bool {
		return e.Reference == "ref-1" && e.UserUID == "uid-1"
	})).Return(nil).Once()

	svc := newService(repo, cache, pub)
	got, err := svc.Fulfill(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, order, got)
	pub.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestFulfill_RedeliveryDoesNotPublishAgain(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	pub := new(PublisherMock)
	order := &models.Order{ID: 1, Reference: "ref-1", UserUID: "uid-1", Status: models.OrderSuccessful}

	repo.On("FulfillOrder", mock.Anything, "ref-1", testNow).Return(order, false, nil).Once()

	svc := newService(repo, cache, pub)
	got, err := svc.Fulfill(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, order, got)
	pub.AssertNotCalled(t, "Publish")
	cache.AssertNotCalled(t, "Invalidate")
}

func TestFulfill_PublishErrorIsSoft(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	pub := new(PublisherMock)
	order := &models.Order{ID: 1, Reference: "ref-1", UserUID: "uid-1", Status: models.OrderSuccessful}

	repo.On("FulfillOrder", mock.Anything, "ref-1", testNow).Return(order, true, nil).Once()
	cache.On("Invalidate", "profile:uid-1").Return(nil).Once()
	pub.On("Publish", "payments.fulfilled", mock.Anything).Return(errors.New("amqp down")).Once()

	svc := newService(repo, cache, pub)
	_, err := svc.Fulfill(context.Background(), "ref-1")
	assert.NoError(t, err)
}

func TestFulfill_UnknownOrder(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("FulfillOrder", mock.Anything, "ghost", testNow).
		Return(nil, false, repository.ErrOrderNotFound).Once()

	svc := newService(repo, cache, nil)
	_, err := svc.Fulfill(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

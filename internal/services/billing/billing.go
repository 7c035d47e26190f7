// Package billing реализует бизнес-логику регистрации подписок и
// подтверждения оплат: атомарную регистрацию (роль, организация,
// подписка, заказ) и идемпотентное применение платёжных событий.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/examprep/entitlement-service/internal/lib/interval"
	"github.com/examprep/entitlement-service/internal/lib/sl"
	"github.com/examprep/entitlement-service/internal/models"
	"github.com/examprep/entitlement-service/internal/storage/repository"
)

// Repository определяет методы хранилища, нужные биллингу.
type Repository interface {
	// GetPlan возвращает тарифный план по ID.
	GetPlan(ctx context.Context, planID int) (*models.Plan, error)
	// Onboard атомарно регистрирует подписку пользователя.
	Onboard(ctx context.Context, p repository.OnboardingParams) error
	// FulfillOrder идемпотентно подтверждает оплату по ссылке заказа.
	FulfillOrder(ctx context.Context, reference string, now time.Time) (*models.Order, bool, error)
}

// Cache описывает инвалидацию кэшированных профилей доступа.
type Cache interface {
	Invalidate(key string) error
}

// Publisher публикует события биллинга для внешних потребителей
// (уведомления по почте обрабатывает отдельный сервис).
type Publisher interface {
	Publish(routingKey string, message any) error
}

// PaymentEvent — событие подтверждённой оплаты.
type PaymentEvent struct {
	Event     string `json:"event"`
	Reference string `json:"reference"`
	UserUID   string `json:"user_uid"`
	PlanID    int    `json:"plan_id"`
	Amount    int    `json:"amount"`
}

// OnboardResult — результат регистрации подписки. Для платных планов
// Reference передаётся платёжному провайдеру для инициализации оплаты.
type OnboardResult struct {
	PlanID        int    `json:"plan_id"`
	PaymentNeeded bool   `json:"payment_needed"`
	Reference     string `json:"reference,omitempty"`
}

// Service реализует бизнес-логику биллинга.
type Service struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// New создает новый Service. publisher может быть nil — тогда события
// не публикуются.
func New(repo Repository, cache Cache, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Onboard регистрирует подписку пользователя на выбранный план.
// Бесплатный план активируется сразу со сроком в один интервал оплаты;
// платный создаётся неактивным вместе с ожидающим оплаты заказом.
func (s *Service) Onboard(ctx context.Context, userUID string, planID int, organizationName string) (*OnboardResult, error) {
	const op = "billing.Onboard"

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plan.Type == models.PlanTypeOrganization && organizationName == "" {
		return nil, fmt.Errorf("%s: organization name is required for %s plans", op, models.PlanTypeOrganization)
	}

	now := s.now().UTC()
	params := repository.OnboardingParams{
		UserUID:          userUID,
		Plan:             plan,
		OrganizationName: organizationName,
		StartDate:        now,
	}
	result := &OnboardResult{PlanID: plan.ID}

	if plan.Price == 0 {
		end, err := interval.Extend(now, plan.Interval)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		params.Active = true
		params.EndDate = end
	} else {
		result.PaymentNeeded = true
		result.Reference = uuid.NewString()
		params.OrderReference = result.Reference
	}

	if err := s.repo.Onboard(ctx, params); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateProfile(userUID)

	s.log.Info("onboarded user",
		slog.String("user_uid", userUID),
		slog.Int("plan_id", plan.ID),
		slog.Bool("payment_needed", result.PaymentNeeded))
	return result, nil
}

// Fulfill применяет подтверждение оплаты по ссылке заказа. Повторное
// подтверждение той же ссылки не продлевает подписку второй раз и не
// публикует повторное событие.
func (s *Service) Fulfill(ctx context.Context, reference string) (*models.Order, error) {
	const op = "billing.Fulfill"

	order, applied, err := s.repo.FulfillOrder(ctx, reference, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		s.log.Info("fulfillment already applied", slog.String("reference", reference))
		return order, nil
	}

	s.invalidateProfile(order.UserUID)

	if s.publisher != nil {
		event := PaymentEvent{
			Event:     "payment.fulfilled",
			Reference: order.Reference,
			UserUID:   order.UserUID,
			PlanID:    order.PlanID,
			Amount:    order.Amount,
		}
		if err := s.publisher.Publish("payments.fulfilled", event); err != nil {
			s.log.Warn("failed to publish payment event", sl.Err(err))
		}
	}

	s.log.Info("fulfilled order",
		slog.String("reference", reference),
		slog.String("user_uid", order.UserUID))
	return order, nil
}

func (s *Service) invalidateProfile(userUID string) {
	cacheKey := "profile:" + userUID
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate profile cache", slog.String("key", cacheKey), sl.Err(err))
	}
}

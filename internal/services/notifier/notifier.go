// Package notifier реализует планировщик уведомлений об истекающих
// подписках: находит подписки, истекающие завтра, и публикует события
// для сервиса рассылки. Сам сервис писем — внешний потребитель очереди.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/examprep/entitlement-service/internal/lib/sl"
	"github.com/examprep/entitlement-service/internal/storage/repository"
)

// Repository определяет методы хранилища, нужные планировщику.
type Repository interface {
	// FindSubscriptionsExpiringTomorrow находит подписки с истекающим завтра сроком.
	FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*repository.ExpiryInfo, error)
	// DeactivateExpired снимает флаг активности с истёкших подписок.
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

// Publisher публикует события уведомлений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ExpiryEvent — событие о скором истечении подписки.
type ExpiryEvent struct {
	Event    string    `json:"event"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	PlanName string    `json:"plan_name"`
	EndDate  time.Time `json:"end_date"`
}

// Service реализует планировщик уведомлений.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New создает новый Service.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Run запускает цикл планировщика: первый проход сразу, затем с заданным
// интервалом до отмены контекста.
func (s *Service) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		if err := s.ProcessOnce(ctx); err != nil {
			s.log.Error("scheduler pass failed", sl.Err(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessOnce выполняет один проход: деактивирует истёкшие подписки и
// публикует уведомления об истекающих завтра.
func (s *Service) ProcessOnce(ctx context.Context) error {
	const op = "notifier.ProcessOnce"

	deactivated, err := s.repo.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if deactivated > 0 {
		s.log.Info("deactivated expired subscriptions", slog.Int("count", deactivated))
	}

	expiring, err := s.repo.FindSubscriptionsExpiringTomorrow(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, info := range expiring {
		event := ExpiryEvent{
			Event:    "subscription.expiring",
			Email:    info.Email,
			Username: info.Username,
			PlanName: info.PlanName,
			EndDate:  info.EndDate,
		}
		if err := s.publisher.Publish("subscriptions.expiring", event); err != nil {
			s.log.Error("failed to publish expiry event",
				slog.String("username", info.Username), sl.Err(err))
			continue
		}
	}
	s.log.Info("scheduler pass finished", slog.Int("expiring", len(expiring)))
	return nil
}

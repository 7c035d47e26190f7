// Package status реализует агрегатор биллингового состояния пользователя:
// есть ли подписка, требуется ли оплата и какое сообщение показать.
//
// Агрегатор работает на консультативном пути (навигация клиента), поэтому
// на ошибках хранилища не падает: возвращает нейтральный статус и пишет
// ошибку в лог. Запрет доступа — задача резолвера, не агрегатора.
package status

import (
	"context"
	"log/slog"
	"time"

	"github.com/examprep/entitlement-service/internal/lib/sl"
	"github.com/examprep/entitlement-service/internal/models"
)

// Repository определяет методы хранилища, нужные агрегатору статуса.
type Repository interface {
	// GetAccessProfile загружает пользователя с организацией и обеими подписками.
	GetAccessProfile(ctx context.Context, userUID string) (*models.AccessProfile, error)
	// GetOrganizationByOwner возвращает организацию пользователя-владельца с подпиской.
	GetOrganizationByOwner(ctx context.Context, ownerUID string) (*models.Organization, *models.Subscription, error)
	// HasPendingJoinRequest сообщает об ожидающей заявке на вступление.
	HasPendingJoinRequest(ctx context.Context, userUID string) (bool, error)
	// CountSuccessfulOrders возвращает число успешных платежей пользователя.
	CountSuccessfulOrders(ctx context.Context, userUID string) (int, error)
}

// Service реализует агрегатор статуса.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый Service с переданными хранилищем и логгером.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// GetStatus возвращает снимок состояния пользователя. Пустой userUID
// означает анонимного посетителя: возвращается только
// Authenticated=false, база данных не трогается.
func (s *Service) GetStatus(ctx context.Context, userUID string) models.Status {
	const op = "status.GetStatus"
	if userUID == "" {
		return models.Status{Authenticated: false}
	}

	log := s.log.With(slog.String("op", op), slog.String("user_uid", userUID))
	result := models.Status{Authenticated: true}

	profile, err := s.repo.GetAccessProfile(ctx, userUID)
	if err != nil {
		log.Error("failed to load access profile", sl.Err(err))
		return result
	}
	result.Role = profile.User.Role

	var (
		sub         *models.Subscription
		isOrgMember bool
	)
	if profile.User.Role == models.RoleOrganization {
		// Владельцу организации показывается подписка его организации,
		// а не той, в которой он состоит.
		_, ownedSub, err := s.repo.GetOrganizationByOwner(ctx, userUID)
		if err != nil {
			log.Error("failed to load owned organization", sl.Err(err))
			return result
		}
		sub = ownedSub
	} else {
		sub, isOrgMember = profile.CurrentSubscription()
	}
	result.IsOrgMember = isOrgMember

	if sub == nil {
		pending, err := s.repo.HasPendingJoinRequest(ctx, userUID)
		if err != nil {
			log.Error("failed to check join requests", sl.Err(err))
			return result
		}
		result.MissingSubscription = !pending
		if pending {
			result.StatusMessage = "your request to join an organization is awaiting approval"
		} else {
			result.StatusMessage = "no subscription found, choose a plan to continue"
		}
	} else {
		planID := sub.PlanID
		result.PlanID = &planID
		if sub.Plan != nil && sub.Plan.Price > 0 && !sub.ActiveAt(s.now()) {
			result.NeedsPayment = true
			if isOrgMember {
				// Участники организаций не платят сами.
				result.StatusMessage = "your organization's subscription has expired, contact your organization administrator"
			} else {
				result.StatusMessage = "your subscription requires payment"
			}
		}
	}

	count, err := s.repo.CountSuccessfulOrders(ctx, userUID)
	if err != nil {
		log.Error("failed to count successful orders", sl.Err(err))
		return result
	}
	result.IsNewUser = count == 0

	return result
}

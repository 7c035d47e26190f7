// Package entitlement реализует резолвер доступа: решение, разрешён ли
// пользователю доступ к запрошенному ресурсу в данный момент, и проектор
// фильтров каталога из ограничений тарифного плана.
//
// Порядок проверок строгий: задание организации перекрывает любые
// подписки, подписка организации перекрывает личную, ограничения плана
// проверяются последними. Ошибка загрузки данных трактуется как отказ
// на стороне вызывающего: резолвер возвращает ошибку, а не разрешение.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/examprep/entitlement-service/internal/lib/sl"
	"github.com/examprep/entitlement-service/internal/models"
	"github.com/examprep/entitlement-service/internal/storage/repository"
)

// Формат времени в сообщениях о не начавшихся заданиях.
const startTimeFormat = "02 Jan 2006 15:04"

var decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "entitlement_decisions_total",
	Help: "Число решений резолвера доступа по исходам.",
}, []string{"outcome"})

// Repository определяет методы хранилища, нужные резолверу.
type Repository interface {
	// GetAccessProfile загружает пользователя с организацией и обеими подписками.
	GetAccessProfile(ctx context.Context, userUID string) (*models.AccessProfile, error)
	// GetAssignment возвращает задание по ID.
	GetAssignment(ctx context.Context, id int) (*models.Assignment, error)
	// GetExamName возвращает название экзамена по ID.
	GetExamName(ctx context.Context, examID int) (string, error)
	// GetPaper возвращает работу с названием экзамена.
	GetPaper(ctx context.Context, paperID int) (*models.Paper, error)
}

// Cache описывает методы для кэширования профилей доступа.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Decision — результат резолвера: разрешение либо отказ с причиной,
// пригодной для показа пользователю.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Context — необязательный контекст запрошенного ресурса.
// AssignmentID включает путь задания, исключающий проверку подписок.
type Context struct {
	AssignmentID *int
	ExamID       *int
	SubjectID    *int
	Year         *int
}

// Service реализует резолвер доступа и проектор фильтров плана.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый Service с переданными хранилищем, кешем и логгером.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

func allow() Decision {
	decisionsTotal.WithLabelValues("allowed").Inc()
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	decisionsTotal.WithLabelValues("denied").Inc()
	return Decision{Allowed: false, Reason: reason}
}

// ResolveAccess решает, разрешён ли пользователю доступ к ресурсу из
// контекста. Отсутствие пользователя — внутренняя несогласованность и
// возвращается ошибкой; отсутствие ресурса контекста — обычный отказ.
func (s *Service) ResolveAccess(ctx context.Context, userUID string, rc Context) (Decision, error) {
	const op = "entitlement.ResolveAccess"

	profile, err := s.loadProfile(ctx, userUID)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()

	if rc.AssignmentID != nil {
		return s.resolveAssignment(ctx, profile, *rc.AssignmentID, now)
	}

	sub, _ := profile.SelectActiveSubscription(now)
	if sub == nil {
		return deny("no active subscription"), nil
	}
	if sub.Plan == nil {
		return Decision{}, fmt.Errorf("%s: subscription %d has no plan loaded", op, sub.ID)
	}

	if rc.ExamID != nil {
		examsAllowed := sub.Plan.Features.AllowedExams
		if !examsAllowed.IsUnrestricted() {
			examName, err := s.repo.GetExamName(ctx, *rc.ExamID)
			if err != nil {
				if errors.Is(err, repository.ErrExamNotFound) {
					return deny("exam not found"), nil
				}
				return Decision{}, fmt.Errorf("%s: %w", op, err)
			}
			if !examsAllowed.Allows(examName) {
				return deny(fmt.Sprintf("your %s plan does not cover %s", sub.Plan.Name, examName)), nil
			}
		}
	}
	if rc.SubjectID != nil {
		if !sub.Plan.Features.AllowedSubjects.Allows(fmt.Sprintf("%d", *rc.SubjectID)) {
			return deny(fmt.Sprintf("your %s plan does not cover this subject", sub.Plan.Name)), nil
		}
	}
	if rc.Year != nil {
		if !sub.Plan.Features.AllowedYears.Allows(fmt.Sprintf("%d", *rc.Year)) {
			return deny(fmt.Sprintf("your %s plan does not cover year %d", sub.Plan.Name, *rc.Year)), nil
		}
	}

	return allow(), nil
}

// ResolvePaperAccess решает доступ к экзаменационной работе: загружает
// работу и проверяет доступ с контекстом её экзамена, предмета и года.
func (s *Service) ResolvePaperAccess(ctx context.Context, userUID string, paperID int) (Decision, error) {
	const op = "entitlement.ResolvePaperAccess"

	paper, err := s.repo.GetPaper(ctx, paperID)
	if err != nil {
		if errors.Is(err, repository.ErrPaperNotFound) {
			return deny("paper not found"), nil
		}
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.ResolveAccess(ctx, userUID, Context{
		ExamID:    &paper.ExamID,
		SubjectID: &paper.SubjectID,
		Year:      &paper.Year,
	})
}

// PlanFilters возвращает ограничения каталога действующего плана
// пользователя. Если действующего плана нет, все три фильтра запрещают
// всё: пользователь без подписки не видит каталог.
func (s *Service) PlanFilters(ctx context.Context, userUID string) (models.PlanFeatures, error) {
	const op = "entitlement.PlanFilters"

	profile, err := s.loadProfile(ctx, userUID)
	if err != nil {
		return models.PlanFeatures{}, fmt.Errorf("%s: %w", op, err)
	}

	sub, _ := profile.SelectActiveSubscription(s.now())
	if sub == nil || sub.Plan == nil {
		return models.PlanFeatures{
			AllowedExams:    models.NoneAllowed(),
			AllowedSubjects: models.NoneAllowed(),
			AllowedYears:    models.NoneAllowed(),
		}, nil
	}
	return sub.Plan.Features, nil
}

func (s *Service) resolveAssignment(ctx context.Context, profile *models.AccessProfile, assignmentID int, now time.Time) (Decision, error) {
	const op = "entitlement.resolveAssignment"

	assignment, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return deny("assignment not found"), nil
		}
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}

	if profile.User.OrganizationID == nil || *profile.User.OrganizationID != assignment.OrganizationID {
		return deny("you are not a member of the assigning organization"), nil
	}
	if now.Before(assignment.StartTime) {
		return deny(fmt.Sprintf("assignment has not started yet, it starts at %s",
			assignment.StartTime.Format(startTimeFormat))), nil
	}
	if now.After(assignment.EndTime) {
		return deny("assignment window closed"), nil
	}

	// Открытое окно задания даёт доступ безо всяких проверок подписок.
	return allow(), nil
}

func (s *Service) loadProfile(ctx context.Context, userUID string) (*models.AccessProfile, error) {
	cacheKey := "profile:" + userUID

	var cached *models.AccessProfile
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read profile from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && cached != nil {
		return cached, nil
	}

	profile, err := s.repo.GetAccessProfile(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, profile, time.Minute); err != nil {
		s.log.Warn("failed to cache profile", slog.String("key", cacheKey), sl.Err(err))
	}
	return profile, nil
}

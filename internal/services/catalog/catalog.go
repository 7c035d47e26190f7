// Package catalog реализует выдачу каталога экзаменов и работ с учётом
// ограничений действующего тарифного плана пользователя.
//
// Фильтры трёхзначные: отсутствующее ограничение не применяется, пустой
// список сразу возвращает пустую выдачу без запроса к базе, непустой
// список ограничивает выборку.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examprep/entitlement-service/internal/models"
)

// Repository определяет методы хранилища для выдачи каталога.
type Repository interface {
	// ListExams возвращает экзамены, nil-фильтр означает отсутствие ограничения.
	ListExams(ctx context.Context, allowedNames []string) ([]*models.Exam, error)
	// ListPapers возвращает работы с необязательными фильтрами.
	ListPapers(ctx context.Context, examNames, subjectIDs, years []string) ([]*models.Paper, error)
}

// FilterSource выдаёт ограничения каталога для пользователя.
type FilterSource interface {
	PlanFilters(ctx context.Context, userUID string) (models.PlanFeatures, error)
}

// Service реализует выдачу каталога.
type Service struct {
	repo    Repository
	filters FilterSource
	log     *slog.Logger
}

// New создает новый Service.
func New(repo Repository, filters FilterSource, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		filters: filters,
		log:     log,
	}
}

// ListExams возвращает экзамены, доступные пользователю по его плану.
func (s *Service) ListExams(ctx context.Context, userUID string) ([]*models.Exam, error) {
	const op = "catalog.ListExams"

	features, err := s.filters.PlanFilters(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if features.AllowedExams.IsNoneAllowed() {
		return []*models.Exam{}, nil
	}

	names, restricted := features.AllowedExams.Restriction()
	if !restricted {
		names = nil
	}
	exams, err := s.repo.ListExams(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return exams, nil
}

// ListPapers возвращает работы, доступные пользователю по его плану.
func (s *Service) ListPapers(ctx context.Context, userUID string) ([]*models.Paper, error) {
	const op = "catalog.ListPapers"

	features, err := s.filters.PlanFilters(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if features.AllowedExams.IsNoneAllowed() ||
		features.AllowedSubjects.IsNoneAllowed() ||
		features.AllowedYears.IsNoneAllowed() {
		return []*models.Paper{}, nil
	}

	examNames, _ := features.AllowedExams.Restriction()
	subjectIDs, _ := features.AllowedSubjects.Restriction()
	years, _ := features.AllowedYears.Restriction()

	papers, err := s.repo.ListPapers(ctx, examNames, subjectIDs, years)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return papers, nil
}

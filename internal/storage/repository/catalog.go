package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/examprep/entitlement-service/internal/models"
)

// GetExamName возвращает отображаемое название экзамена по его ID.
// Возвращает ErrExamNotFound, если экзамена не существует.
func (s *Storage) GetExamName(ctx context.Context, examID int) (string, error) {
	const op = "storage.GetExamName"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT name FROM exams WHERE id = $1`
	var name string
	if err := s.DB.QueryRowContext(ctx, query, examID).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, ErrExamNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

// GetPaper возвращает экзаменационную работу вместе с названием экзамена.
// Возвращает ErrPaperNotFound, если работы не существует.
func (s *Storage) GetPaper(ctx context.Context, paperID int) (*models.Paper, error) {
	const op = "storage.GetPaper"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.exam_id, e.name, p.subject_id, p.year, p.title
			  FROM papers p
			  JOIN exams e ON e.id = p.exam_id
			  WHERE p.id = $1`
	var paper models.Paper
	row := s.DB.QueryRowContext(ctx, query, paperID)
	if err := row.Scan(&paper.ID, &paper.ExamID, &paper.ExamName,
		&paper.SubjectID, &paper.Year, &paper.Title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrPaperNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &paper, nil
}

// ListExams возвращает экзамены каталога. allowedNames == nil означает
// отсутствие фильтра; непустой список ограничивает выдачу по названиям.
func (s *Storage) ListExams(ctx context.Context, allowedNames []string) ([]*models.Exam, error) {
	const op = "storage.ListExams"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name
			  FROM exams
			  WHERE ($1::text[] IS NULL OR name = ANY($1))
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, allowedNames)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Exam
	for rows.Next() {
		var e models.Exam
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPapers возвращает работы каталога, ограниченные необязательными
// фильтрами по названию экзамена, предмету и году. nil означает
// отсутствие соответствующего фильтра.
func (s *Storage) ListPapers(ctx context.Context, examNames, subjectIDs, years []string) ([]*models.Paper, error) {
	const op = "storage.ListPapers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.exam_id, e.name, p.subject_id, p.year, p.title
			  FROM papers p
			  JOIN exams e ON e.id = p.exam_id
			  WHERE ($1::text[] IS NULL OR e.name = ANY($1))
			    AND ($2::text[] IS NULL OR p.subject_id::text = ANY($2))
			    AND ($3::text[] IS NULL OR p.year::text = ANY($3))
			  ORDER BY p.id`
	rows, err := s.DB.QueryContext(ctx, query, examNames, subjectIDs, years)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Paper
	for rows.Next() {
		var p models.Paper
		if err := rows.Scan(&p.ID, &p.ExamID, &p.ExamName, &p.SubjectID, &p.Year, &p.Title); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlan возвращает тарифный план по ID.
// Возвращает ErrPlanNotFound, если плана не существует.
func (s *Storage) GetPlan(ctx context.Context, planID int) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, interval, type, features
			  FROM plans
			  WHERE id = $1`
	var (
		plan     models.Plan
		features []byte
	)
	row := s.DB.QueryRowContext(ctx, query, planID)
	if err := row.Scan(&plan.ID, &plan.Name, &plan.Price, &plan.Interval,
		&plan.Type, &features); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var err error
	if plan.Features, err = models.ParsePlanFeatures(features); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

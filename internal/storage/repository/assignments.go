package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/examprep/entitlement-service/internal/models"
)

// GetAssignment возвращает задание по его ID.
// Возвращает ErrAssignmentNotFound, если задания не существует.
func (s *Storage) GetAssignment(ctx context.Context, id int) (*models.Assignment, error) {
	const op = "storage.GetAssignment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, organization_id, paper_id, title, start_time, end_time
			  FROM assignments
			  WHERE id = $1`
	var a models.Assignment
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&a.ID, &a.OrganizationID, &a.PaperID, &a.Title,
		&a.StartTime, &a.EndTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrAssignmentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// CreateAssignment сохраняет новое задание организации и возвращает его ID.
func (s *Storage) CreateAssignment(ctx context.Context, a models.Assignment) (int, error) {
	const op = "storage.CreateAssignment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO assignments (organization_id, paper_id, title, start_time, end_time)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		a.OrganizationID, a.PaperID, a.Title, a.StartTime, a.EndTime).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

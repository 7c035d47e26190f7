package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/examprep/entitlement-service/internal/models"
)

// GetOrganizationByOwner возвращает организацию, которой владеет
// пользователь, вместе с её подпиской и планом. Подписки может не быть.
func (s *Storage) GetOrganizationByOwner(ctx context.Context, ownerUID string) (*models.Organization, *models.Subscription, error) {
	const op = "storage.GetOrganizationByOwner"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT o.id, o.name, o.owner_uid,
			      sub.id, sub.plan_id, sub.organization_id, sub.start_date, sub.end_date, sub.is_active,
			      p.id, p.name, p.price, p.interval, p.type, p.features
			  FROM organizations o
			  LEFT JOIN subscriptions sub ON sub.organization_id = o.id
			  LEFT JOIN plans p ON p.id = sub.plan_id
			  WHERE o.owner_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, ownerUID)

	var (
		org  models.Organization
		sRow subscriptionRow
		pRow planRow
	)
	if err := row.Scan(&org.ID, &org.Name, &org.OwnerUID,
		&sRow.id, &sRow.planID, &sRow.ownerID, &sRow.startDate, &sRow.endDate, &sRow.isActive,
		&pRow.id, &pRow.name, &pRow.price, &pRow.interval, &pRow.planType, &pRow.features,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := sRow.toSubscription(pRow)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return &org, sub, nil
}

// HasPendingJoinRequest сообщает, есть ли у пользователя ожидающая
// заявка на вступление в организацию.
func (s *Storage) HasPendingJoinRequest(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.HasPendingJoinRequest"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM join_requests
			      WHERE user_uid = $1 AND status = $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userUID, models.JoinRequestPending).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

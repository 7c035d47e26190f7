package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/examprep/entitlement-service/internal/models"
)

// ExpiryInfo — данные для уведомления об истекающей подписке.
type ExpiryInfo struct {
	Email    string
	Username string
	PlanName string
	EndDate  time.Time
}

// FindSubscriptionsExpiringTomorrow находит подписки, срок которых
// истекает завтра, вместе с адресами владельцев. Для подписок
// организаций уведомляется владелец организации.
func (s *Storage) FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*ExpiryInfo, error) {
	const op = "storage.FindSubscriptionsExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.email, u.username, p.name, sub.end_date
			  FROM subscriptions sub
			  JOIN plans p ON p.id = sub.plan_id
			  JOIN users u ON u.uid = COALESCE(sub.user_uid,
			      (SELECT owner_uid FROM organizations WHERE id = sub.organization_id))
			  WHERE sub.is_active = true
			    AND sub.end_date::DATE = CURRENT_DATE + INTERVAL '1 day'`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*ExpiryInfo
	for rows.Next() {
		var info ExpiryInfo
		if err = rows.Scan(&info.Email, &info.Username, &info.PlanName, &info.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeactivateExpired снимает флаг активности с подписок, срок которых
// истёк. Вызывается планировщиком, на решения о доступе не влияет:
// резолвер проверяет срок самостоятельно.
func (s *Storage) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	const op = "storage.DeactivateExpired"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET is_active = false
			  WHERE is_active = true
			    AND end_date IS NOT NULL
			    AND end_date <= $1`
	res, err := s.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetPlanByType возвращает первый план заданного типа. Используется в
// интеграционных тестах и сидировании.
func (s *Storage) GetPlanByType(ctx context.Context, planType string) (*models.Plan, error) {
	const op = "storage.GetPlanByType"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, interval, type, features
			  FROM plans
			  WHERE type = $1
			  ORDER BY id
			  LIMIT 1`
	var (
		plan     models.Plan
		features []byte
	)
	row := s.DB.QueryRowContext(ctx, query, planType)
	if err := row.Scan(&plan.ID, &plan.Name, &plan.Price, &plan.Interval,
		&plan.Type, &features); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var err error
	if plan.Features, err = models.ParsePlanFeatures(features); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/examprep/entitlement-service/internal/lib/interval"
	"github.com/examprep/entitlement-service/internal/models"
)

// CountSuccessfulOrders возвращает число успешных платежей пользователя.
// Ноль означает, что пользователь ещё ни разу не платил.
func (s *Storage) CountSuccessfulOrders(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountSuccessfulOrders"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM orders WHERE user_uid = $1 AND status = $2`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID, models.OrderSuccessful).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// OnboardingParams описывает атомарную регистрацию подписки:
// для организационных планов создаётся организация и роль владельца,
// подписка привязывается к ней; для студенческих — личная подписка.
// Непустой OrderReference добавляет ожидающий оплаты заказ.
type OnboardingParams struct {
	UserUID          string
	Plan             *models.Plan
	OrganizationName string
	StartDate        time.Time
	EndDate          *time.Time
	Active           bool
	OrderReference   string
}

// Onboard выполняет регистрацию подписки одной транзакцией: частичный
// сбой не оставит пользователя с ролью без подписки или организацию
// без привязанной подписки.
func (s *Storage) Onboard(ctx context.Context, p OnboardingParams) error {
	const op = "storage.Onboard"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if p.Plan.Type == models.PlanTypeOrganization {
		var orgID int
		err = tx.QueryRowContext(ctx,
			`INSERT INTO organizations (name, owner_uid) VALUES ($1, $2) RETURNING id`,
			p.OrganizationName, p.UserUID).Scan(&orgID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET role = $1, organization_id = $2 WHERE uid = $3`,
			models.RoleOrganization, orgID, p.UserUID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO subscriptions (plan_id, organization_id, start_date, end_date, is_active)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.Plan.ID, orgID, p.StartDate, p.EndDate, p.Active)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO subscriptions (plan_id, user_uid, start_date, end_date, is_active)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.Plan.ID, p.UserUID, p.StartDate, p.EndDate, p.Active)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if p.OrderReference != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO orders (reference, user_uid, plan_id, amount, status)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.OrderReference, p.UserUID, p.Plan.ID, p.Plan.Price, models.OrderPending)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FulfillOrder подтверждает оплату по ссылке заказа. Операция
// идемпотентна: переход PENDING -> SUCCESSFUL выполняется защищённым
// UPDATE, и только выполнивший переход вызов активирует подписку и
// продлевает её срок. Повторная доставка того же подтверждения вернёт
// заказ с applied == false, не продлевая подписку второй раз.
func (s *Storage) FulfillOrder(ctx context.Context, reference string, now time.Time) (*models.Order, bool, error) {
	const op = "storage.FulfillOrder"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var order models.Order
	err = tx.QueryRowContext(ctx,
		`UPDATE orders SET status = $1
		 WHERE reference = $2 AND status = $3
		 RETURNING id, reference, user_uid, plan_id, amount, status, created_at`,
		models.OrderSuccessful, reference, models.OrderPending).Scan(
		&order.ID, &order.Reference, &order.UserUID, &order.PlanID,
		&order.Amount, &order.Status, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Заказ уже обработан другой доставкой либо не существует.
		err = tx.QueryRowContext(ctx,
			`SELECT id, reference, user_uid, plan_id, amount, status, created_at
			 FROM orders WHERE reference = $1`, reference).Scan(
			&order.ID, &order.Reference, &order.UserUID, &order.PlanID,
			&order.Amount, &order.Status, &order.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", op, err)
		}
		return &order, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	var (
		subID        int
		startDate    time.Time
		endDate      sql.NullTime
		planInterval string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT sub.id, sub.start_date, sub.end_date, p.interval
		 FROM subscriptions sub
		 JOIN plans p ON p.id = sub.plan_id
		 WHERE sub.plan_id = $1
		   AND (sub.user_uid = $2
		        OR sub.organization_id IN (SELECT id FROM organizations WHERE owner_uid = $2))
		 FOR UPDATE OF sub`,
		order.PlanID, order.UserUID).Scan(&subID, &startDate, &endDate, &planInterval)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	var currentEnd *time.Time
	if endDate.Valid {
		currentEnd = &endDate.Time
	}
	base := interval.ExtensionBase(startDate, currentEnd, now)
	newEnd, err := interval.Extend(base, planInterval)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE subscriptions SET is_active = true, end_date = $1 WHERE id = $2`,
		newEnd, subID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &order, true, nil
}

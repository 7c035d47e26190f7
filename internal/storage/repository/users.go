package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/examprep/entitlement-service/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, organization_id, created_at
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username)

	var orgID sql.NullInt64
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &orgID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if orgID.Valid {
		id := int(orgID.Int64)
		u.OrganizationID = &id
	}
	return u, nil
}

// GetAccessProfile загружает одним запросом всё, что нужно для решения
// о доступе: пользователя, его организацию и обе подписки с планами.
// Возвращает ErrUserNotFound, если пользователя не существует.
func (s *Storage) GetAccessProfile(ctx context.Context, userUID string) (*models.AccessProfile, error) {
	const op = "storage.GetAccessProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.email, u.username, u.password_hash, u.role, u.organization_id, u.created_at,
			      o.id, o.name, o.owner_uid,
			      os.id, os.plan_id, os.organization_id, os.start_date, os.end_date, os.is_active,
			      op.id, op.name, op.price, op.interval, op.type, op.features,
			      ps.id, ps.plan_id, ps.user_uid, ps.start_date, ps.end_date, ps.is_active,
			      pp.id, pp.name, pp.price, pp.interval, pp.type, pp.features
			  FROM users u
			  LEFT JOIN organizations o ON o.id = u.organization_id
			  LEFT JOIN subscriptions os ON os.organization_id = o.id
			  LEFT JOIN plans op ON op.id = os.plan_id
			  LEFT JOIN subscriptions ps ON ps.user_uid = u.uid
			  LEFT JOIN plans pp ON pp.id = ps.plan_id
			  WHERE u.uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var (
		profile models.AccessProfile
		userOrg sql.NullInt64

		orgID    sql.NullInt64
		orgName  sql.NullString
		orgOwner sql.NullString

		osRow subscriptionRow
		opRow planRow
		psRow subscriptionRow
		ppRow planRow
	)
	if err := row.Scan(
		&profile.User.UID, &profile.User.Email, &profile.User.Username,
		&profile.User.PasswordHash, &profile.User.Role, &userOrg, &profile.User.CreatedAt,
		&orgID, &orgName, &orgOwner,
		&osRow.id, &osRow.planID, &osRow.ownerID, &osRow.startDate, &osRow.endDate, &osRow.isActive,
		&opRow.id, &opRow.name, &opRow.price, &opRow.interval, &opRow.planType, &opRow.features,
		&psRow.id, &psRow.planID, &psRow.ownerUID, &psRow.startDate, &psRow.endDate, &psRow.isActive,
		&ppRow.id, &ppRow.name, &ppRow.price, &ppRow.interval, &ppRow.planType, &ppRow.features,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if userOrg.Valid {
		id := int(userOrg.Int64)
		profile.User.OrganizationID = &id
	}
	if orgID.Valid {
		profile.Organization = &models.Organization{
			ID:       int(orgID.Int64),
			Name:     orgName.String,
			OwnerUID: orgOwner.String,
		}
	}

	var err error
	if profile.OrgSubscription, err = osRow.toSubscription(opRow); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile.PersonalSubscription, err = psRow.toSubscription(ppRow); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &profile, nil
}

// subscriptionRow и planRow принимают значения LEFT JOIN, где вся строка
// может оказаться NULL.
type subscriptionRow struct {
	id        sql.NullInt64
	planID    sql.NullInt64
	ownerID   sql.NullInt64
	ownerUID  sql.NullString
	startDate sql.NullTime
	endDate   sql.NullTime
	isActive  sql.NullBool
}

type planRow struct {
	id       sql.NullInt64
	name     sql.NullString
	price    sql.NullInt64
	interval sql.NullString
	planType sql.NullString
	features []byte
}

func (r subscriptionRow) toSubscription(p planRow) (*models.Subscription, error) {
	if !r.id.Valid {
		return nil, nil
	}
	sub := &models.Subscription{
		ID:        int(r.id.Int64),
		PlanID:    int(r.planID.Int64),
		StartDate: r.startDate.Time,
		IsActive:  r.isActive.Bool,
	}
	if r.ownerID.Valid {
		id := int(r.ownerID.Int64)
		sub.OrganizationID = &id
	}
	if r.ownerUID.Valid {
		uid := r.ownerUID.String
		sub.UserUID = &uid
	}
	if r.endDate.Valid {
		end := r.endDate.Time
		sub.EndDate = &end
	}
	if p.id.Valid {
		features, err := models.ParsePlanFeatures(p.features)
		if err != nil {
			return nil, err
		}
		sub.Plan = &models.Plan{
			ID:       int(p.id.Int64),
			Name:     p.name.String,
			Price:    int(p.price.Int64),
			Interval: p.interval.String,
			Type:     p.planType.String,
			Features: features,
		}
	}
	return sub, nil
}

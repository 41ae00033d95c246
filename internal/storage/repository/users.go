package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ouedraogodev/pronos226/internal/models"
)

const userColumns = `uid, email, full_name, phone, password_hash, tier,
			      expires_at, promo_code_used, promo_trial_granted, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var phone, promoCode sql.NullString
	var expiresAt sql.NullTime
	var tier string
	if err := row.Scan(&u.UID, &u.Email, &u.FullName, &phone, &u.PasswordHash,
		&tier, &expiresAt, &promoCode, &u.PromoTrialGranted, &u.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := models.ParseTier(tier)
	if err != nil {
		return nil, err
	}
	u.Tier = parsed

	if phone.Valid {
		u.Phone = &phone.String
	}
	if promoCode.Valid {
		u.PromoCodeUsed = &promoCode.String
	}
	if expiresAt.Valid {
		u.ExpiresAt = &expiresAt.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, full_name, phone, password_hash, tier,
			      expires_at, promo_code_used, promo_trial_granted)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.Phone, user.PasswordHash, string(user.Tier),
		user.ExpiresAt, user.PromoCodeUsed, user.PromoTrialGranted).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email без учета регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает список пользователей с пагинацией,
// новые регистрации первыми.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSubscription безусловно перезаписывает уровень и срок действия
// подписки пользователя. Возвращает количество обновленных строк.
func (s *Storage) UpdateSubscription(ctx context.Context, userUID string, tier models.Tier, expiresAt *time.Time) (int64, error) {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET tier = $1, expires_at = $2
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, string(tier), expiresAt, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// UpdateTierIf исправляет уровень подписки только если пользователь
// все еще находится на ожидаемом уровне. Условие защищает от потери
// обновлений, когда сверка ролей гонится с активацией подписки.
func (s *Storage) UpdateTierIf(ctx context.Context, userUID string, expect, tier models.Tier, expiresAt *time.Time) (int64, error) {
	const op = "storage.UpdateTierIf"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET tier = $1, expires_at = $2
			  WHERE uid = $3 AND tier = $4`
	res, err := s.DB.ExecContext(ctx, query, string(tier), expiresAt, userUID, string(expect))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ouedraogodev/pronos226/internal/models"
)

const claimColumns = `id, user_uid, target_tier, billing_period, amount,
			      payment_channel, phone_number, proof_url, status, reviewer_note,
			      decided_at, created_at`

func scanClaim(row interface{ Scan(...any) error }) (*models.PaymentClaim, error) {
	c := &models.PaymentClaim{}
	var tier, period, status string
	var note sql.NullString
	var decidedAt sql.NullTime
	if err := row.Scan(&c.ID, &c.UserUID, &tier, &period, &c.Amount,
		&c.Channel, &c.PhoneNumber, &c.ProofURL, &status, &note,
		&decidedAt, &c.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.TargetTier, err = models.ParseTier(tier); err != nil {
		return nil, err
	}
	if c.Period, err = models.ParseBillingPeriod(period); err != nil {
		return nil, err
	}
	if c.Status, err = models.ParseClaimStatus(status); err != nil {
		return nil, err
	}

	if note.Valid {
		c.ReviewerNote = &note.String
	}
	if decidedAt.Valid {
		c.DecidedAt = &decidedAt.Time
	}
	return c, nil
}

// CreateClaim сохраняет новую платежную заявку.
func (s *Storage) CreateClaim(ctx context.Context, claim models.PaymentClaim) error {
	const op = "storage.CreateClaim"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payment_claims (id, user_uid, target_tier, billing_period,
			      amount, payment_channel, phone_number, proof_url, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.DB.ExecContext(ctx, query,
		claim.ID, claim.UserUID, string(claim.TargetTier), string(claim.Period),
		claim.Amount, claim.Channel, claim.PhoneNumber, claim.ProofURL,
		string(claim.Status))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetClaim возвращает заявку по идентификатору.
func (s *Storage) GetClaim(ctx context.Context, id string) (*models.PaymentClaim, error) {
	const op = "storage.GetClaim"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + claimColumns + `
			  FROM payment_claims
			  WHERE id = $1`
	c, err := scanClaim(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListClaims возвращает заявки по фильтру, новые первыми.
func (s *Storage) ListClaims(ctx context.Context, filter models.ClaimFilter) ([]*models.PaymentClaim, error) {
	const op = "storage.ListClaims"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + claimColumns + `
			  FROM payment_claims
			  WHERE 1=1`
	args := []any{}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.UserUID != nil {
		args = append(args, *filter.UserUID)
		query += ` AND user_uid = $` + strconv.Itoa(len(args))
	}
	args = append(args, filter.Limit)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentClaim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DecideClaim записывает решение по заявке. Обновляются только заявки
// в статусе pending: повторное решение по уже закрытой заявке не
// затрагивает ни одной строки, что и возвращается вызывающему.
func (s *Storage) DecideClaim(ctx context.Context, id string, status models.ClaimStatus, note *string, decidedAt time.Time) (int64, error) {
	const op = "storage.DecideClaim"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_claims
			  SET status = $1, reviewer_note = $2, decided_at = $3
			  WHERE id = $4 AND status = 'pending'`
	res, err := s.DB.ExecContext(ctx, query, string(status), note, decidedAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

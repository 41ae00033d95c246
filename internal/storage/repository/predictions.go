package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ouedraogodev/pronos226/internal/models"
)

const predictionColumns = `id, sport, league, home_team, away_team, prediction,
			      odds, confidence, access_level, status, match_date, created_at`

func scanPrediction(row interface{ Scan(...any) error }) (*models.Prediction, error) {
	p := &models.Prediction{}
	var accessLevel, status string
	if err := row.Scan(&p.ID, &p.Sport, &p.League, &p.HomeTeam, &p.AwayTeam,
		&p.Tip, &p.Odds, &p.Confidence, &accessLevel, &status,
		&p.MatchDate, &p.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := models.ParseTier(accessLevel)
	if err != nil {
		return nil, err
	}
	p.AccessLevel = parsed
	p.Status = models.PredictionStatus(status)
	return p, nil
}

// CreatePrediction сохраняет новый прогноз и возвращает его ID.
func (s *Storage) CreatePrediction(ctx context.Context, p models.Prediction) (int, error) {
	const op = "storage.CreatePrediction"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO predictions (sport, league, home_team, away_team,
			      prediction, odds, confidence, access_level, status, match_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		p.Sport, p.League, p.HomeTeam, p.AwayTeam, p.Tip, p.Odds,
		p.Confidence, string(p.AccessLevel), string(p.Status), p.MatchDate).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPredictions возвращает прогнозы с датой матча в интервале [from, to),
// отсортированные по дате матча.
func (s *Storage) ListPredictions(ctx context.Context, from, to time.Time) ([]*models.Prediction, error) {
	const op = "storage.ListPredictions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + predictionColumns + `
			  FROM predictions
			  WHERE match_date >= $1 AND match_date < $2
			  ORDER BY match_date`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPrediction возвращает прогноз по ID.
func (s *Storage) GetPrediction(ctx context.Context, id int) (*models.Prediction, error) {
	const op = "storage.GetPrediction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + predictionColumns + `
			  FROM predictions
			  WHERE id = $1`
	p, err := scanPrediction(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdatePredictionStatus проставляет исход прогноза.
func (s *Storage) UpdatePredictionStatus(ctx context.Context, id int, status models.PredictionStatus) (int64, error) {
	const op = "storage.UpdatePredictionStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE predictions SET status = $1 WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// RemovePrediction удаляет прогноз по ID и возвращает количество удалённых записей.
func (s *Storage) RemovePrediction(ctx context.Context, id int) (int64, error) {
	const op = "storage.RemovePrediction"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM predictions WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

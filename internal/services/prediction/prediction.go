// Package services содержит логику каталога прогнозов: публикацию и
// сопровождение прогнозов администратором и выдачу ленты пользователю
// с учетом его действующего уровня подписки.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ouedraogodev/pronos226/internal/entitlement"
	"github.com/ouedraogodev/pronos226/internal/models"
	"github.com/ouedraogodev/pronos226/internal/storage/repository"
)

// ErrPredictionNotFound прогноз не найден.
var ErrPredictionNotFound = errors.New("prediction not found")

// PredictionRepository описывает контракт хранилища прогнозов.
type PredictionRepository interface {
	CreatePrediction(ctx context.Context, p models.Prediction) (int, error)
	ListPredictions(ctx context.Context, from, to time.Time) ([]*models.Prediction, error)
	GetPrediction(ctx context.Context, id int) (*models.Prediction, error)
	UpdatePredictionStatus(ctx context.Context, id int, status models.PredictionStatus) (int64, error)
	RemovePrediction(ctx context.Context, id int) (int64, error)
}

// PredictionService реализует каталог прогнозов.
type PredictionService struct {
	repo PredictionRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewPredictionService создает новый экземпляр PredictionService.
func NewPredictionService(repo PredictionRepository, log *slog.Logger) *PredictionService {
	return &PredictionService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Create публикует новый прогноз и возвращает его ID.
func (s *PredictionService) Create(ctx context.Context, req models.DummyPrediction) (int, error) {
	const op = "prediction.Create"

	matchDate, err := time.Parse(time.RFC3339, req.MatchDate)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	accessLevel, err := models.ParseTier(req.AccessLevel)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	confidence := req.Confidence
	if confidence == "" {
		confidence = "medium"
	}

	p := models.Prediction{
		Sport:       req.Sport,
		League:      req.League,
		HomeTeam:    req.HomeTeam,
		AwayTeam:    req.AwayTeam,
		Tip:         req.Tip,
		Odds:        req.Odds,
		Confidence:  confidence,
		AccessLevel: accessLevel,
		Status:      models.PredictionPending,
		MatchDate:   matchDate,
	}
	id, err := s.repo.CreatePrediction(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("prediction published",
		slog.Int("id", id),
		slog.String("access_level", string(accessLevel)))
	return id, nil
}

// ListVisible возвращает прогнозы, доступные данному пользователю.
// Прогнозы закрытых уровней из выдачи исключаются целиком. При
// onlyToday выборка ограничивается матчами текущих суток UTC.
func (s *PredictionService) ListVisible(ctx context.Context, viewer *models.User, onlyToday bool) ([]*models.Prediction, error) {
	const op = "prediction.ListVisible"

	now := s.now().UTC()
	from := time.Time{}
	to := now.AddDate(10, 0, 0)
	if onlyToday {
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 0, 1)
	}

	all, err := s.repo.ListPredictions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	visible := make([]*models.Prediction, 0, len(all))
	for _, p := range all {
		if entitlement.HasAccess(viewer, p.AccessLevel, now) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// SetResult проставляет исход завершившегося матча.
func (s *PredictionService) SetResult(ctx context.Context, id int, status string) error {
	const op = "prediction.SetResult"

	parsed, err := models.ParsePredictionStatus(status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := s.repo.UpdatePredictionStatus(ctx, id, parsed)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrPredictionNotFound
	}
	return nil
}

// Remove удаляет прогноз из каталога.
func (s *PredictionService) Remove(ctx context.Context, id int) error {
	const op = "prediction.Remove"

	affected, err := s.repo.RemovePrediction(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrPredictionNotFound
	}
	return nil
}

// Get возвращает прогноз с проверкой доступа пользователя.
func (s *PredictionService) Get(ctx context.Context, viewer *models.User, id int) (*models.Prediction, error) {
	const op = "prediction.Get"

	p, err := s.repo.GetPrediction(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !entitlement.HasAccess(viewer, p.AccessLevel, s.now().UTC()) {
		// Закрытый уровень неотличим от отсутствия прогноза.
		return nil, ErrPredictionNotFound
	}
	return p, nil
}

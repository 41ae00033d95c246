package models

import "time"

// PredictionStatus исход прогноза.
type PredictionStatus string

// Возможные исходы прогноза.
const (
	PredictionPending PredictionStatus = "pending"
	PredictionWon     PredictionStatus = "won"
	PredictionLost    PredictionStatus = "lost"
	PredictionVoid    PredictionStatus = "void"
)

// ParsePredictionStatus проверяет строку и возвращает исход прогноза.
func ParsePredictionStatus(s string) (PredictionStatus, error) {
	switch PredictionStatus(s) {
	case PredictionPending, PredictionWon, PredictionLost, PredictionVoid:
		return PredictionStatus(s), nil
	}
	return "", &UnknownValueError{Field: "status", Value: s}
}

// Prediction опубликованный прогноз на матч. Поле AccessLevel задает
// минимальный уровень подписки, необходимый для просмотра.
type Prediction struct {
	ID          int              `json:"id"`           // Идентификатор прогноза
	Sport       string           `json:"sport"`        // Вид спорта
	League      string           `json:"league"`       // Название лиги
	HomeTeam    string           `json:"home_team"`    // Хозяева
	AwayTeam    string           `json:"away_team"`    // Гости
	Tip         string           `json:"prediction"`   // Текст прогноза
	Odds        float64          `json:"odds"`         // Коэффициент
	Confidence  string           `json:"confidence"`   // Уверенность: low, medium, high
	AccessLevel Tier             `json:"access_level"` // Минимальный уровень подписки для просмотра
	Status      PredictionStatus `json:"status"`       // Исход: pending, won, lost, void
	MatchDate   time.Time        `json:"match_date"`   // Дата и время матча
	CreatedAt   time.Time        `json:"created_at"`   // Момент публикации
}

// DummyPrediction используется для приёма данных прогноза из JSON-запроса
// администратора, прежде чем конвертировать их в Prediction.
type DummyPrediction struct {
	Sport       string  `json:"sport" validate:"required"`                              // Вид спорта
	League      string  `json:"league" validate:"required"`                             // Лига
	HomeTeam    string  `json:"home_team" validate:"required"`                          // Хозяева
	AwayTeam    string  `json:"away_team" validate:"required"`                          // Гости
	Tip         string  `json:"prediction" validate:"required"`                         // Текст прогноза
	Odds        float64 `json:"odds" validate:"required,gt=1"`                          // Коэффициент (>1)
	Confidence  string  `json:"confidence" validate:"omitempty,oneof=low medium high"`  // Уверенность
	AccessLevel string  `json:"access_level" validate:"required,oneof=free standard vip"` // Минимальный уровень
	MatchDate   string  `json:"match_date" validate:"required"`                         // Дата матча в формате RFC3339
}

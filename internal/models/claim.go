package models

import "time"

// ClaimStatus статус платежной заявки.
type ClaimStatus string

// Жизненный цикл заявки: pending -> approved | rejected.
const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

// ParseClaimStatus проверяет строку и возвращает статус заявки.
func ParseClaimStatus(s string) (ClaimStatus, error) {
	switch ClaimStatus(s) {
	case ClaimPending, ClaimApproved, ClaimRejected:
		return ClaimStatus(s), nil
	}
	return "", &UnknownValueError{Field: "status", Value: s}
}

// UnknownValueError ошибка границы модели: значение перечисления
// пришло извне и не распознано.
type UnknownValueError struct {
	Field string
	Value string
}

func (e *UnknownValueError) Error() string {
	return "unknown " + e.Field + ": " + e.Value
}

// PaymentClaim заявка пользователя на подтверждение оплаты.
// Создается один раз при отправке формы; после решения администратора
// изменяются только Status, ReviewerNote и DecidedAt, ровно один раз.
type PaymentClaim struct {
	ID           string        `json:"id"`                      // UUID заявки
	UserUID      string        `json:"user_uid"`                // Владелец заявки
	TargetTier   Tier          `json:"target_tier"`             // Покупаемый уровень: standard или vip
	Period       BillingPeriod `json:"billing_period"`          // Период оплаты: monthly или yearly
	Amount       int           `json:"amount"`                  // Сумма в франках CFA, вычисляется сервером при создании
	Channel      string        `json:"payment_channel"`         // Платежный канал: orange_money или moov_money
	PhoneNumber  string        `json:"phone_number"`            // Номер, с которого производилась оплата
	ProofURL     string        `json:"proof_url"`               // Ссылка на скриншот подтверждения (внешнее хранилище)
	Status       ClaimStatus   `json:"status"`                  // Текущий статус заявки
	ReviewerNote *string       `json:"reviewer_note,omitempty"` // Комментарий администратора (опционально)
	DecidedAt    *time.Time    `json:"decided_at,omitempty"`    // Момент принятия решения
	CreatedAt    time.Time     `json:"created_at"`              // Момент создания заявки
}

// DummyClaim используется для приёма данных формы оплаты из JSON-запроса.
// Сумма не принимается от клиента — она выводится из тарифа и периода.
type DummyClaim struct {
	TargetTier  string `json:"target_tier" validate:"required,oneof=standard vip"`    // Покупаемый уровень
	Period      string `json:"billing_period" validate:"required,oneof=monthly yearly"` // Период оплаты
	Channel     string `json:"payment_channel" validate:"required,oneof=orange_money moov_money"` // Платежный канал
	PhoneNumber string `json:"phone_number" validate:"required,min=8,max=20"`         // Номер плательщика
	ProofURL    string `json:"proof_url" validate:"required,url"`                     // Ссылка на скриншот
}

// ClaimFilter параметры выборки заявок для страницы проверки платежей.
type ClaimFilter struct {
	Status  *ClaimStatus // Фильтр по статусу, nil — все заявки
	UserUID *string      // Фильтр по владельцу, nil — все пользователи
	Limit   int
	Offset  int
}

package models

import "time"

// ClaimDecisionEvent событие о решении по платежной заявке.
// Публикуется в очередь уведомлений и превращается в письмо
// пользователю отдельным процессом-отправителем.
type ClaimDecisionEvent struct {
	ClaimID    string    `json:"claim_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	TargetTier string    `json:"target_tier"`
	Period     string    `json:"period"`
	Status     string    `json:"status"`
	Note       *string   `json:"note,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}

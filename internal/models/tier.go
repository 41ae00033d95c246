// Package models содержит доменные структуры платформы прогнозов:
// пользователей с их подпиской, платежные заявки и сами прогнозы,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"errors"
	"fmt"
)

// ErrNotPaidTier уровень нельзя купить через платежную заявку.
var ErrNotPaidTier = errors.New("tier is not purchasable")

// Tier уровень подписки пользователя. Упорядочен по возрастанию прав:
// free < standard < vip < admin.
type Tier string

// Возможные уровни подписки.
const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierVIP      Tier = "vip"
	TierAdmin    Tier = "admin"
)

// ParseTier проверяет строку и возвращает уровень подписки.
// Неизвестные значения отклоняются на границе модели,
// дальше по коду Tier всегда валиден.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFree, TierStandard, TierVIP, TierAdmin:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown subscription tier: %q", s)
}

// ParsePaidTier как ParseTier, но допускает только платные уровни,
// которые можно купить через заявку.
func ParsePaidTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierStandard, TierVIP:
		return Tier(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrNotPaidTier)
}

// BillingPeriod период оплаты заявки.
type BillingPeriod string

// Возможные периоды оплаты.
const (
	PeriodMonthly BillingPeriod = "monthly"
	PeriodYearly  BillingPeriod = "yearly"
)

// ParseBillingPeriod проверяет строку и возвращает период оплаты.
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	switch BillingPeriod(s) {
	case PeriodMonthly, PeriodYearly:
		return BillingPeriod(s), nil
	}
	return "", fmt.Errorf("unknown billing period: %q", s)
}

// Days возвращает длительность оплаченного доступа в днях.
func (p BillingPeriod) Days() int {
	if p == PeriodYearly {
		return 365
	}
	return 30
}

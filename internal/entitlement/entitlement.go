// Package entitlement реализует чистые функции проверки доступа к
// контенту по уровню подписки. Пакет не ходит в хранилище и не имеет
// побочных эффектов: решение принимается по текущей записи пользователя
// и переданному моменту времени.
package entitlement

import (
	"time"

	"github.com/ouedraogodev/pronos226/internal/models"
)

// order фиксированный полный порядок уровней подписки.
var order = map[models.Tier]int{
	models.TierFree:     0,
	models.TierStandard: 1,
	models.TierVIP:      2,
	models.TierAdmin:    3,
}

// Order возвращает позицию уровня в полном порядке free < standard < vip < admin.
func Order(t models.Tier) int {
	return order[t]
}

// IsActive сообщает, действует ли подписка пользователя в момент now.
// Уровни free и admin активны всегда. Платные уровни активны только
// при наличии даты окончания в будущем: отсутствующая дата на платном
// уровне трактуется как отсутствие доступа.
func IsActive(u *models.User, now time.Time) bool {
	switch u.Tier {
	case models.TierFree, models.TierAdmin:
		return true
	}
	return u.ExpiresAt != nil && u.ExpiresAt.After(now)
}

// HasAccess сообщает, может ли пользователь видеть контент с требуемым
// уровнем required в момент now. Истекшая платная подписка понижает
// эффективный уровень до free.
func HasAccess(u *models.User, required models.Tier, now time.Time) bool {
	effective := models.TierFree
	if IsActive(u, now) {
		effective = u.Tier
	}
	return order[effective] >= order[required]
}

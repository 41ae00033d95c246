package models

import "time"

// User представляет зарегистрированного пользователя вместе с его
// подпиской (связь 1:1, хранится в одной строке таблицы users).
// ExpiresAt может быть nil — для уровней free и admin срок действия
// не учитывается, для standard/vip отсутствие даты означает
// отсутствие активного доступа.
type User struct {
	UID               string     // Уникальный идентификатор пользователя
	Email             string     // Электронная почта (уникальная, сравнивается без учета регистра)
	FullName          string     // Отображаемое имя
	Phone             *string    // Номер телефона (опционально)
	PasswordHash      string     // bcrypt-хэш пароля
	Tier              Tier       // Текущий уровень подписки
	ExpiresAt         *time.Time // Срок действия подписки
	PromoCodeUsed     *string    // Промокод, указанный при регистрации (для аудита)
	PromoTrialGranted bool       // Пробный период по промокоду уже выдан
	CreatedAt         time.Time  // Дата регистрации
}

// Package services содержит логику работы с профилями пользователей:
// загрузку с кешированием, административное управление подписками и
// сверку ролей. Сверка выполняется при каждой материализации профиля
// и самовосстанавливает запись, если конфигурационный администратор
// потерял роль или посторонний аккаунт её получил.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	"github.com/ouedraogodev/pronos226/internal/models"
	"github.com/ouedraogodev/pronos226/internal/storage/repository"
)

// ErrUserNotFound пользователь не найден.
var ErrUserNotFound = errors.New("user not found")

const profileCacheTTL = 5 * time.Minute

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	// UpdateSubscription безусловно перезаписывает уровень и срок подписки.
	UpdateSubscription(ctx context.Context, userUID string, tier models.Tier, expiresAt *time.Time) (int64, error)
	// UpdateTierIf меняет уровень только при совпадении ожидаемого.
	UpdateTierIf(ctx context.Context, userUID string, expect, tier models.Tier, expiresAt *time.Time) (int64, error)
}

// Cache описывает контракт кеша профилей.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// ProfileService отвечает за чтение профилей и управление подписками.
type ProfileService struct {
	repo       UserRepository
	cache      Cache
	log        *slog.Logger
	adminEmail string
}

// NewProfileService создает новый экземпляр ProfileService.
// adminEmail — почта единственного конфигурационного администратора.
func NewProfileService(repo UserRepository, cache Cache, log *slog.Logger, adminEmail string) *ProfileService {
	return &ProfileService{
		repo:       repo,
		cache:      cache,
		log:        log,
		adminEmail: adminEmail,
	}
}

func profileCacheKey(uid string) string {
	return "profile:" + uid
}

// GetProfile возвращает профиль пользователя, прогоняя его через сверку
// ролей. Кеш хранит уже сверенную запись; при исправлении записи кеш
// перезаписывается свежим значением.
func (s *ProfileService) GetProfile(ctx context.Context, userUID string) (*models.User, error) {
	const op = "profile.GetProfile"

	var cached models.User
	found, err := s.cache.Get(ctx, profileCacheKey(userUID), &cached)
	if err != nil {
		s.log.Warn("profile cache read failed", sl.Err(err))
	}
	if found {
		return s.Reconcile(ctx, &cached)
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err = s.Reconcile(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, profileCacheKey(userUID), user, profileCacheTTL); err != nil {
		s.log.Warn("profile cache write failed", sl.Err(err))
	}
	return user, nil
}

// Reconcile сверяет роль пользователя с конфигурацией. Почта из
// admin_email всегда должна иметь уровень admin, и ни одна другая
// запись не должна. Исправление — условная запись: если уровень успели
// поменять параллельно, правка не применяется, возвращается свежая
// запись из базы, а следующая материализация досверит её заново.
func (s *ProfileService) Reconcile(ctx context.Context, u *models.User) (*models.User, error) {
	const op = "profile.Reconcile"

	expected := strings.EqualFold(u.Email, s.adminEmail)
	switch {
	case expected && u.Tier != models.TierAdmin:
		return s.correctTier(ctx, u, models.TierAdmin)
	case !expected && u.Tier == models.TierAdmin:
		return s.correctTier(ctx, u, models.TierFree)
	default:
		return u, nil
	}
}

func (s *ProfileService) correctTier(ctx context.Context, u *models.User, tier models.Tier) (*models.User, error) {
	const op = "profile.correctTier"

	affected, err := s.repo.UpdateTierIf(ctx, u.UID, u.Tier, tier, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(ctx, profileCacheKey(u.UID)); err != nil {
		s.log.Warn("profile cache invalidation failed", sl.Err(err))
	}

	if affected == 0 {
		// Гонка с другой записью: возвращаем то, что лежит в базе.
		fresh, err := s.repo.GetUser(ctx, u.UID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return fresh, nil
	}

	s.log.Info("role reconciled",
		slog.String("uid", u.UID),
		slog.String("from", string(u.Tier)),
		slog.String("to", string(tier)))

	u.Tier = tier
	u.ExpiresAt = nil
	return u, nil
}

// ListUsers возвращает страницу пользователей для административной панели.
func (s *ProfileService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "profile.ListUsers"

	users, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// SetSubscription административно перезаписывает подписку пользователя.
// После записи профиль заново материализуется: если администратор
// случайно понизил собственную запись, сверка тут же вернет роль.
func (s *ProfileService) SetSubscription(ctx context.Context, userUID string, tier models.Tier, expiresAt *time.Time) (*models.User, error) {
	const op = "profile.SetSubscription"

	affected, err := s.repo.UpdateSubscription(ctx, userUID, tier, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	if err := s.cache.Invalidate(ctx, profileCacheKey(userUID)); err != nil {
		s.log.Warn("profile cache invalidation failed", sl.Err(err))
	}
	return s.GetProfile(ctx, userUID)
}

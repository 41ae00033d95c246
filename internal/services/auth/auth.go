// Package services содержит логику бизнес-уровня для регистрации,
// входа и проверки токенов. Регистрация отвечает и за разовое
// применение промокода: валидный код из конфигурационной таблицы
// выдает пробный платный уровень на заданное число дней.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ouedraogodev/pronos226/internal/config"
	"github.com/ouedraogodev/pronos226/internal/lib/jwt"
	"github.com/ouedraogodev/pronos226/internal/lib/password"
	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	"github.com/ouedraogodev/pronos226/internal/models"
	"github.com/ouedraogodev/pronos226/internal/storage/repository"
)

// Ошибки бизнес-уровня аутентификации.
var (
	// ErrEmailTaken почта уже зарегистрирована.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials пара почта/пароль не подошла.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email без учета регистра.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// IncrementPromoUsage увеличивает глобальный счетчик промокода.
	IncrementPromoUsage(ctx context.Context, code string) error
}

// Reconciler выполняет сверку ролей при материализации профиля.
type Reconciler interface {
	Reconcile(ctx context.Context, u *models.User) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users      UserRepository
	reconciler Reconciler
	jwtMaker   jwt.Maker
	cfg        *config.Config
	log        *slog.Logger
	now        func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, reconciler Reconciler, jwtMaker jwt.Maker, cfg *config.Config, log *slog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		reconciler: reconciler,
		jwtMaker:   jwtMaker,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Register создает нового пользователя. Без промокода подписка
// начинается с уровня free без срока действия. Указанный промокод
// сохраняется для аудита в любом случае; неизвестный код молча
// игнорируется и не является ошибкой регистрации.
func (s *AuthService) Register(ctx context.Context, email, fullName, rawPassword string, phone *string, promoCode string) (string, error) {
	const op = "auth.Register"

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        email,
		FullName:     fullName,
		Phone:        phone,
		PasswordHash: hashed,
		Tier:         models.TierFree,
	}

	granted := false
	if promoCode != "" {
		user.PromoCodeUsed = &promoCode
		if promo, ok := s.cfg.FindPromo(promoCode); ok {
			tier, err := models.ParseTier(promo.Tier)
			if err != nil {
				s.log.Warn("promo table has unknown tier, skipping grant",
					slog.String("code", promo.Code), sl.Err(err))
			} else {
				expiresAt := s.now().UTC().AddDate(0, 0, promo.TrialDays)
				user.Tier = tier
				user.ExpiresAt = &expiresAt
				user.PromoTrialGranted = true
				granted = true
			}
		}
	}

	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if granted {
		// Счетчик кампании ведется в лучшем случае: его отказ
		// не должен откатывать созданный аккаунт.
		if err := s.users.IncrementPromoUsage(ctx, promoCode); err != nil {
			s.log.Warn("failed to increment promo usage",
				slog.String("code", promoCode), sl.Err(err))
		}
		s.log.Info("promo trial granted",
			slog.String("uid", uid), slog.String("tier", string(user.Tier)))
	}

	user.UID = uid
	if _, err := s.reconciler.Reconcile(ctx, &user); err != nil {
		s.log.Warn("role reconciliation after registration failed", sl.Err(err))
	}

	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Перед выдачей токена профиль проходит сверку ролей, чтобы уровень
// в токене отражал исправленную запись.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	user, err = s.reconciler.Reconcile(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, string(user.Tier))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает его claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}

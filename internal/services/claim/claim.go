// Package services реализует рабочий процесс платежных заявок:
// подачу, просмотр, решение рецензента и активацию подписки.
// Заявка живет по схеме pending -> approved | rejected; решение
// необратимо и фиксируется условной записью в базе, так что два
// рецензента не могут закрыть одну заявку дважды.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ouedraogodev/pronos226/internal/config"
	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	"github.com/ouedraogodev/pronos226/internal/models"
	"github.com/ouedraogodev/pronos226/internal/rabbitmq"
	"github.com/ouedraogodev/pronos226/internal/storage/repository"
)

// Ошибки рабочего процесса заявок.
var (
	// ErrClaimNotFound заявка не найдена.
	ErrClaimNotFound = errors.New("claim not found")
	// ErrInvalidTransition заявка уже закрыта, повторное решение невозможно.
	ErrInvalidTransition = errors.New("claim is not pending")
	// ErrUnknownPlan запрошенная пара тариф/период не продается.
	ErrUnknownPlan = errors.New("unknown plan")
	// ErrNotDecided по заявке еще нет решения, перегонять нечего.
	ErrNotDecided = errors.New("claim has no decision yet")
)

// PartialActivationError возвращается, когда решение по заявке уже
// записано, но активация подписки не прошла. Решение при этом остается
// в силе: активацию можно безопасно повторить через RedriveActivation.
type PartialActivationError struct {
	ClaimID string
	Err     error
}

func (e *PartialActivationError) Error() string {
	return fmt.Sprintf("claim %s approved but activation failed: %v", e.ClaimID, e.Err)
}

func (e *PartialActivationError) Unwrap() error { return e.Err }

// ActivationPolicy определяет, как активация сочетается с уже
// действующей подпиской пользователя.
type ActivationPolicy int

const (
	// ActivationPolicyReplace подписка перезаписывается целиком:
	// новый срок отсчитывается от момента решения и не суммируется
	// с остатком предыдущей подписки.
	ActivationPolicyReplace ActivationPolicy = iota
)

// ClaimRepository описывает контракт хранилища заявок и подписок.
type ClaimRepository interface {
	CreateClaim(ctx context.Context, claim models.PaymentClaim) error
	GetClaim(ctx context.Context, id string) (*models.PaymentClaim, error)
	ListClaims(ctx context.Context, filter models.ClaimFilter) ([]*models.PaymentClaim, error)
	// DecideClaim записывает решение, только если заявка еще pending.
	DecideClaim(ctx context.Context, id string, status models.ClaimStatus, note *string, decidedAt time.Time) (int64, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateSubscription(ctx context.Context, userUID string, tier models.Tier, expiresAt *time.Time) (int64, error)
}

// CacheInvalidator сбрасывает кешированный профиль после активации.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// Publisher отправляет событие о решении в очередь уведомлений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ClaimService реализует подачу и рецензирование платежных заявок.
type ClaimService struct {
	repo      ClaimRepository
	cache     CacheInvalidator
	publisher Publisher
	cfg       *config.Config
	log       *slog.Logger
	policy    ActivationPolicy
	now       func() time.Time
}

// NewClaimService создает новый экземпляр ClaimService.
func NewClaimService(repo ClaimRepository, cache CacheInvalidator, publisher Publisher, cfg *config.Config, log *slog.Logger) *ClaimService {
	return &ClaimService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		policy:    ActivationPolicyReplace,
		now:       time.Now,
	}
}

// Submit регистрирует новую заявку на оплату. Сумма не принимается от
// клиента, а выводится из конфигурационного прайс-листа, чтобы заявка
// фиксировала ожидаемый платеж на момент подачи.
func (s *ClaimService) Submit(ctx context.Context, userUID string, req models.DummyClaim) (*models.PaymentClaim, error) {
	const op = "claim.Submit"

	tier, err := models.ParsePaidTier(req.TargetTier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	period, err := models.ParseBillingPeriod(req.Period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	amount, ok := s.cfg.PriceFor(req.TargetTier, req.Period)
	if !ok {
		return nil, ErrUnknownPlan
	}

	claim := models.PaymentClaim{
		ID:          uuid.NewString(),
		UserUID:     userUID,
		TargetTier:  tier,
		Period:      period,
		Amount:      amount,
		Channel:     req.Channel,
		PhoneNumber: req.PhoneNumber,
		ProofURL:    req.ProofURL,
		Status:      models.ClaimPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment claim submitted",
		slog.String("claim_id", claim.ID),
		slog.String("user_uid", userUID),
		slog.String("tier", string(tier)),
		slog.Int("amount", amount))
	return &claim, nil
}

// List возвращает заявки по фильтру рецензента.
func (s *ClaimService) List(ctx context.Context, filter models.ClaimFilter) ([]*models.PaymentClaim, error) {
	const op = "claim.List"

	claims, err := s.repo.ListClaims(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// Get возвращает заявку по идентификатору.
func (s *ClaimService) Get(ctx context.Context, id string) (*models.PaymentClaim, error) {
	claim, err := s.repo.GetClaim(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("claim.Get: %w", err)
	}
	return claim, nil
}

// Approve одобряет заявку и активирует подписку. Решение и активация —
// две отдельные записи: если вторая не прошла, решение уже необратимо
// и вызывающему возвращается PartialActivationError с сохраненной
// заявкой, а не откат.
func (s *ClaimService) Approve(ctx context.Context, id string, note *string) (*models.PaymentClaim, error) {
	claim, err := s.decide(ctx, id, models.ClaimApproved, note)
	if err != nil {
		return nil, err
	}

	if err := s.activate(ctx, claim); err != nil {
		s.log.Error("subscription activation failed after approval",
			slog.String("claim_id", claim.ID), sl.Err(err))
		return claim, &PartialActivationError{ClaimID: claim.ID, Err: err}
	}

	s.notifyDecision(ctx, claim)
	return claim, nil
}

// Reject отклоняет заявку. Подписка пользователя не меняется.
func (s *ClaimService) Reject(ctx context.Context, id string, note *string) (*models.PaymentClaim, error) {
	claim, err := s.decide(ctx, id, models.ClaimRejected, note)
	if err != nil {
		return nil, err
	}
	s.notifyDecision(ctx, claim)
	return claim, nil
}

func (s *ClaimService) decide(ctx context.Context, id string, status models.ClaimStatus, note *string) (*models.PaymentClaim, error) {
	const op = "claim.decide"

	claim, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.Status != models.ClaimPending {
		return nil, ErrInvalidTransition
	}

	decidedAt := s.now().UTC()
	affected, err := s.repo.DecideClaim(ctx, id, status, note, decidedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		// Заявку успел закрыть параллельный рецензент.
		return nil, ErrInvalidTransition
	}

	claim.Status = status
	claim.ReviewerNote = note
	claim.DecidedAt = &decidedAt

	s.log.Info("claim decided",
		slog.String("claim_id", id),
		slog.String("status", string(status)))
	return claim, nil
}

// activate перезаписывает подписку пользователя по одобренной заявке.
// Срок действия отсчитывается от момента решения, поэтому повторная
// активация той же заявки дает тот же результат.
func (s *ClaimService) activate(ctx context.Context, claim *models.PaymentClaim) error {
	const op = "claim.activate"

	if claim.DecidedAt == nil {
		return ErrNotDecided
	}
	expiresAt := claim.DecidedAt.AddDate(0, 0, claim.Period.Days())

	affected, err := s.repo.UpdateSubscription(ctx, claim.UserUID, claim.TargetTier, &expiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: user %s not found", op, claim.UserUID)
	}

	if err := s.cache.Invalidate(ctx, "profile:"+claim.UserUID); err != nil {
		s.log.Warn("profile cache invalidation failed", sl.Err(err))
	}

	s.log.Info("subscription activated",
		slog.String("user_uid", claim.UserUID),
		slog.String("tier", string(claim.TargetTier)),
		slog.Time("expires_at", expiresAt))
	return nil
}

// RedriveActivation повторяет активацию по уже одобренной заявке.
// Операция идемпотентна: срок подписки выводится из decided_at, так
// что повторный прогон не продлевает и не сдвигает подписку.
func (s *ClaimService) RedriveActivation(ctx context.Context, id string) (*models.PaymentClaim, error) {
	claim, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.Status != models.ClaimApproved {
		return nil, ErrInvalidTransition
	}
	if err := s.activate(ctx, claim); err != nil {
		return claim, &PartialActivationError{ClaimID: claim.ID, Err: err}
	}
	return claim, nil
}

// notifyDecision публикует событие о решении для письма пользователю.
// Уведомление — побочный эффект в лучшем случае: его отказ не влияет
// на исход рецензирования.
func (s *ClaimService) notifyDecision(ctx context.Context, claim *models.PaymentClaim) {
	user, err := s.repo.GetUser(ctx, claim.UserUID)
	if err != nil {
		s.log.Warn("failed to load user for decision notification", sl.Err(err))
		return
	}

	event := models.ClaimDecisionEvent{
		ClaimID:    claim.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		TargetTier: string(claim.TargetTier),
		Period:     string(claim.Period),
		Status:     string(claim.Status),
		Note:       claim.ReviewerNote,
		DecidedAt:  *claim.DecidedAt,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeyClaimDecision, event); err != nil {
		s.log.Warn("failed to publish claim decision event", sl.Err(err))
	}
}

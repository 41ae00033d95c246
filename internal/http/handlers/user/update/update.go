// Package update реализует HTTP-обработчик административного изменения
// подписки пользователя. Новая подписка перезаписывает старую; профиль
// после записи заново проходит сверку ролей.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ouedraogodev/pronos226/internal/http/response"
	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	"github.com/ouedraogodev/pronos226/internal/models"
	profileservice "github.com/ouedraogodev/pronos226/internal/services/profile"
)

// Request — новый уровень и срок подписки пользователя.
// Отсутствующий срок означает бессрочную запись: для платных уровней
// это немедленно неактивная подписка.
type Request struct {
	Tier      string  `json:"tier" validate:"required,oneof=free standard vip admin"`
	ExpiresAt *string `json:"expires_at,omitempty"`
}

// Service описывает контракт сервиса профилей.
type Service interface {
	SetSubscription(ctx context.Context, userUID string, tier models.Tier, expiresAt *time.Time) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	tier, err := models.ParseTier(req.Tier)
	if err != nil {
		log.Error("invalid tier", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid tier"))
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			log.Error("invalid expires_at", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("expires_at must be RFC3339"))
			return
		}
		expiresAt = &parsed
	}

	user, err := h.service.SetSubscription(r.Context(), userUID, tier, expiresAt)
	if err != nil {
		if errors.Is(err, profileservice.ErrUserNotFound) {
			log.Error("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to update subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update subscription"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":        user.UID,
		"tier":       string(user.Tier),
		"expires_at": user.ExpiresAt,
	}))
}

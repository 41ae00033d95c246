// Package get реализует HTTP-обработчик получения собственного профиля.
// Профиль берется из контекста запроса, куда его кладет ProfileMiddleware
// уже прошедшим через сверку ролей.
package get

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ouedraogodev/pronos226/internal/entitlement"
	"github.com/ouedraogodev/pronos226/internal/http/middlewarectx"
	"github.com/ouedraogodev/pronos226/internal/http/response"
	"github.com/ouedraogodev/pronos226/internal/models"
)

// ProfileView — представление профиля для клиента, без секретов.
type ProfileView struct {
	UID                string     `json:"uid"`
	Email              string     `json:"email"`
	FullName           string     `json:"full_name"`
	Phone              *string    `json:"phone,omitempty"`
	Tier               string     `json:"tier"`
	SubscriptionActive bool       `json:"subscription_active"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	PromoCodeUsed      *string    `json:"promo_code_used,omitempty"`
	PromoTrialGranted  bool       `json:"promo_trial_granted"`
	CreatedAt          time.Time  `json:"created_at"`
}

// NewProfileView собирает представление профиля из доменной модели.
func NewProfileView(u *models.User, now time.Time) ProfileView {
	return ProfileView{
		UID:                u.UID,
		Email:              u.Email,
		FullName:           u.FullName,
		Phone:              u.Phone,
		Tier:               string(u.Tier),
		SubscriptionActive: entitlement.IsActive(u, now),
		ExpiresAt:          u.ExpiresAt,
		PromoCodeUsed:      u.PromoCodeUsed,
		PromoTrialGranted:  u.PromoTrialGranted,
		CreatedAt:          u.CreatedAt,
	}
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := r.Context().Value(middlewarectx.Profile).(*models.User)
	if !ok || user == nil {
		log.Error("profile missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(NewProfileView(user, time.Now().UTC())))
}

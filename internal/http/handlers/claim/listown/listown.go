// Package listown реализует HTTP-обработчик истории собственных
// платежных заявок пользователя.
package listown

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ouedraogodev/pronos226/internal/http/middlewarectx"
	"github.com/ouedraogodev/pronos226/internal/http/response"
	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	"github.com/ouedraogodev/pronos226/internal/models"
)

// Service описывает контракт сервиса заявок.
type Service interface {
	List(ctx context.Context, filter models.ClaimFilter) ([]*models.PaymentClaim, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.claim.listown"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	filter := models.ClaimFilter{UserUID: &userUID, Limit: 50}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			filter.Limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			filter.Offset = v
		}
	}

	claims, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list claims", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list claims"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(claims))
}

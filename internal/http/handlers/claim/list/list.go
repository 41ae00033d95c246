// Package list реализует HTTP-обработчик страницы проверки платежей
// для администратора: выборка заявок с фильтром по статусу.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

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
	const op = "handlers.claim.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := models.ClaimFilter{Limit: 50, Offset: 0}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseClaimStatus(raw)
		if err != nil {
			log.Error("invalid status filter", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid status filter"))
			return
		}
		filter.Status = &status
	}
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

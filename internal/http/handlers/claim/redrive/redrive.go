// Package redrive реализует HTTP-обработчик повторной активации
// подписки по одобренной заявке после частичного сбоя.
package redrive

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ouedraogodev/pronos226/internal/http/response"
	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	"github.com/ouedraogodev/pronos226/internal/models"
	claimservice "github.com/ouedraogodev/pronos226/internal/services/claim"
)

// Service описывает контракт сервиса заявок.
type Service interface {
	RedriveActivation(ctx context.Context, id string) (*models.PaymentClaim, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.claim.redrive"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claimID := chi.URLParam(r, "id")

	claim, err := h.service.RedriveActivation(r.Context(), claimID)
	if err != nil {
		switch {
		case errors.Is(err, claimservice.ErrClaimNotFound):
			log.Error("claim not found", slog.String("claim_id", claimID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("claim not found"))
		case errors.Is(err, claimservice.ErrInvalidTransition):
			log.Error("claim is not approved", slog.String("claim_id", claimID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("only approved claims can be redriven"))
		default:
			log.Error("failed to redrive activation", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to redrive activation"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(claim))
}

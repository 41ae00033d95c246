// Package approve реализует HTTP-обработчик одобрения платежной заявки.
package approve

import (
	"context"
	"encoding/json"
	"errors"
	"io"
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

// Request — необязательный комментарий рецензента.
type Request struct {
	Note *string `json:"note,omitempty"`
}

// Service описывает контракт сервиса заявок.
type Service interface {
	Approve(ctx context.Context, id string, note *string) (*models.PaymentClaim, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.claim.approve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claimID := chi.URLParam(r, "id")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	claim, err := h.service.Approve(r.Context(), claimID, req.Note)
	if err != nil {
		var partial *claimservice.PartialActivationError
		switch {
		case errors.Is(err, claimservice.ErrClaimNotFound):
			log.Error("claim not found", slog.String("claim_id", claimID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("claim not found"))
		case errors.Is(err, claimservice.ErrInvalidTransition):
			log.Error("claim already decided", slog.String("claim_id", claimID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("claim already decided"))
		case errors.As(err, &partial):
			// Решение записано, активация не прошла. Возвращаем
			// заявку и отдельный признак, чтобы оператор повторил
			// активацию, а не решение.
			log.Error("partial activation", slog.String("claim_id", claimID), sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Response{
				Status: response.StatusError,
				Error:  "claim approved but activation failed, redrive required",
				Data:   claim,
			})
		default:
			log.Error("failed to approve claim", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to approve claim"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(claim))
}

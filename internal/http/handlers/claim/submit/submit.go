// Package submit реализует HTTP-обработчик подачи платежной заявки.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ouedraogodev/pronos226/internal/http/middlewarectx"
	"github.com/ouedraogodev/pronos226/internal/http/response"
	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	"github.com/ouedraogodev/pronos226/internal/models"
	claimservice "github.com/ouedraogodev/pronos226/internal/services/claim"
)

// Service описывает контракт сервиса заявок.
type Service interface {
	Submit(ctx context.Context, userUID string, req models.DummyClaim) (*models.PaymentClaim, error)
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
	const op = "handlers.claim.submit"

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

	var req models.DummyClaim
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	claim, err := h.service.Submit(r.Context(), userUID, req)
	if err != nil {
		if errors.Is(err, claimservice.ErrUnknownPlan) || errors.Is(err, models.ErrNotPaidTier) {
			log.Error("unknown plan requested", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("requested plan is not available"))
			return
		}
		log.Error("failed to submit claim", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to submit claim"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"claim_id": claim.ID,
		"amount":   claim.Amount,
		"status":   string(claim.Status),
	}))
}

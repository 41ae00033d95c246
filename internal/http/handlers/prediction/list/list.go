// Package list реализует HTTP-обработчик ленты прогнозов.
// Видимость прогнозов определяется действующим уровнем подписки
// пользователя: закрытые уровни в выдачу не попадают.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ouedraogodev/pronos226/internal/http/middlewarectx"
	"github.com/ouedraogodev/pronos226/internal/http/response"
	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	"github.com/ouedraogodev/pronos226/internal/models"
)

// Service описывает контракт сервиса прогнозов.
type Service interface {
	ListVisible(ctx context.Context, viewer *models.User, onlyToday bool) ([]*models.Prediction, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prediction.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	viewer, ok := r.Context().Value(middlewarectx.Profile).(*models.User)
	if !ok || viewer == nil {
		log.Error("profile missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	onlyToday := r.URL.Query().Get("period") == "today"

	predictions, err := h.service.ListVisible(r.Context(), viewer, onlyToday)
	if err != nil {
		log.Error("failed to list predictions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list predictions"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(predictions))
}

// Package paymentinfo реализует HTTP-обработчик справки об оплате:
// прайс-лист тарифов и номера платежных каналов из конфигурации.
package paymentinfo

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/ouedraogodev/pronos226/internal/config"
	"github.com/ouedraogodev/pronos226/internal/http/response"
)

// PlanView цены тарифа для клиента.
type PlanView struct {
	Tier    string `json:"tier"`
	Monthly int    `json:"monthly"`
	Yearly  int    `json:"yearly"`
}

// ChannelView платежный канал и номер получателя.
type ChannelView struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type Handler struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *Handler {
	return &Handler{log: log, cfg: cfg}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	plans := make([]PlanView, 0, len(h.cfg.Plans))
	for _, p := range h.cfg.Plans {
		plans = append(plans, PlanView{Tier: p.Tier, Monthly: p.Monthly, Yearly: p.Yearly})
	}
	channels := make([]ChannelView, 0, len(h.cfg.PaymentChannels))
	for _, c := range h.cfg.PaymentChannels {
		channels = append(channels, ChannelView{Name: c.Name, PhoneNumber: c.PhoneNumber})
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans":    plans,
		"channels": channels,
	}))
}

// Package status реализует HTTP-обработчик статуса пользователя.
//
// Маршрут отвечает и анонимным посетителям: без токена возвращается
// статус с authenticated=false.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/examprep/entitlement-service/internal/http/middlewarectx"
	"github.com/examprep/entitlement-service/internal/http/response"
	"github.com/examprep/entitlement-service/internal/models"
)

// Service описывает интерфейс агрегатора статуса.
type Service interface {
	GetStatus(ctx context.Context, userUID string) models.Status
}

// Handler управляет HTTP-запросами статуса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить биллинговый статус пользователя
// @Description Возвращает снимок состояния: аутентификация, подписка, необходимость оплаты. Доступен без токена.
// @Tags Status
// @Produce json
// @Success 200 {object} models.Status "Снимок состояния"
// @Router /status [get]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	result := h.service.GetStatus(r.Context(), userUID)

	log.Info("resolved status",
		slog.Bool("authenticated", result.Authenticated),
		slog.Bool("needs_payment", result.NeedsPayment))
	render.JSON(w, r, response.OKWithData(result))
}

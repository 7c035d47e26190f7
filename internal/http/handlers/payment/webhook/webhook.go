// Package webhook реализует HTTP-обработчик уведомлений платёжного
// провайдера. Подлинность уведомления проверяется подписью HMAC-SHA256
// тела запроса; подтверждение оплаты идемпотентно.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/examprep/entitlement-service/internal/http/response"
	"github.com/examprep/entitlement-service/internal/lib/sl"
	"github.com/examprep/entitlement-service/internal/models"
	"github.com/examprep/entitlement-service/internal/storage/repository"
)

// EventSucceeded — тип события подтверждённой оплаты.
const EventSucceeded = "payment.succeeded"

// Notification — тело уведомления платёжного провайдера.
type Notification struct {
	Event     string `json:"event"`
	Reference string `json:"reference"`
}

// Service описывает интерфейс подтверждения оплат.
type Service interface {
	Fulfill(ctx context.Context, reference string) (*models.Order, error)
}

// Handler управляет уведомлениями платёжного провайдера.
type Handler struct {
	log     *slog.Logger
	service Service
	secret  string
}

// New создает новый Handler с переданными логгером, сервисом и секретом
// подписи уведомлений.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:     log,
		service: service,
		secret:  secret,
	}
}

func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ServeHTTP godoc
// @Summary Принять уведомление платёжного провайдера
// @Description Проверяет подпись X-Api-Signature и идемпотентно подтверждает оплату заказа.
// @Tags Billing
// @Accept json
// @Produce json
// @Param X-Api-Signature header string true "HMAC-SHA256 подпись тела, base64"
// @Param request body Notification true "Событие оплаты"
// @Success 200 {object} response.Response "Уведомление принято"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if !h.verifySignature(body, r.Header.Get("X-Api-Signature")) {
		log.Error("invalid webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var notification Notification
	if err := json.Unmarshal(body, &notification); err != nil {
		log.Error("failed to decode notification", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if notification.Event != EventSucceeded {
		// Прочие события подтверждаются без обработки, чтобы провайдер
		// не повторял доставку.
		log.Info("ignoring event", slog.String("event", notification.Event))
		render.JSON(w, r, response.OK())
		return
	}

	order, err := h.service.Fulfill(r.Context(), notification.Reference)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			log.Error("order not found", slog.String("reference", notification.Reference))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("order not found"))
			return
		}
		log.Error("failed to fulfill order", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not fulfill order"))
		return
	}

	log.Info("processed payment notification",
		slog.String("reference", order.Reference),
		slog.String("user_uid", order.UserUID))
	render.JSON(w, r, response.OK())
}

// Package onboarding реализует HTTP-обработчик регистрации подписки:
// выбор тарифного плана и, для организационных планов, создание
// организации.
package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/examprep/entitlement-service/internal/http/middlewarectx"
	"github.com/examprep/entitlement-service/internal/http/response"
	"github.com/examprep/entitlement-service/internal/lib/sl"
	"github.com/examprep/entitlement-service/internal/services/billing"
	"github.com/examprep/entitlement-service/internal/storage/repository"
)

// Request — тело запроса регистрации подписки.
type Request struct {
	PlanID           int    `json:"plan_id" validate:"required"`
	OrganizationName string `json:"organization_name,omitempty"`
}

// Service описывает интерфейс бизнес-логики регистрации подписки.
type Service interface {
	Onboard(ctx context.Context, userUID string, planID int, organizationName string) (*billing.OnboardResult, error)
}

// Handler управляет HTTP-запросами регистрации подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Зарегистрировать подписку на тарифный план
// @Description Бесплатный план активируется сразу, платный возвращает ссылку заказа для оплаты.
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body Request true "План и, для организаций, название"
// @Success 200 {object} billing.OnboardResult "Результат регистрации"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Router /onboarding [post]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.onboarding"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("missing user uid in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Onboard(r.Context(), userUID, req.PlanID, req.OrganizationName)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			log.Info("plan not found", slog.Int("plan_id", req.PlanID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plan not found"))
			return
		}
		log.Error("failed to onboard", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete onboarding"))
		return
	}

	log.Info("onboarding completed",
		slog.String("user_uid", userUID),
		slog.Int("plan_id", result.PlanID),
		slog.Bool("payment_needed", result.PaymentNeeded))
	render.JSON(w, r, response.OKWithData(result))
}

// Package start реализует HTTP-обработчик начала задания организации:
// окно задания проверяется резолвером доступа и перекрывает подписки.
package start

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/examprep/entitlement-service/internal/http/middlewarectx"
	"github.com/examprep/entitlement-service/internal/http/response"
	"github.com/examprep/entitlement-service/internal/lib/sl"
	"github.com/examprep/entitlement-service/internal/services/entitlement"
)

// Service описывает интерфейс резолвера доступа к заданиям.
type Service interface {
	ResolveAccess(ctx context.Context, userUID string, rc entitlement.Context) (entitlement.Decision, error)
}

// Handler управляет HTTP-запросами начала задания.
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
// @Summary Начать задание организации
// @Description Проверяет членство в организации и временное окно задания. Отказ содержит причину для пользователя.
// @Tags Access
// @Produce json
// @Param id path int true "ID задания"
// @Success 200 {object} entitlement.Decision "Доступ разрешён"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещён с причиной"
// @Router /assignments/{id}/start [post]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assignment.start"
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

	assignmentID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid assignment id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid assignment id"))
		return
	}

	decision, err := h.service.ResolveAccess(r.Context(), userUID, entitlement.Context{
		AssignmentID: &assignmentID,
	})
	if err != nil {
		log.Error("failed to resolve assignment access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve access"))
		return
	}

	if !decision.Allowed {
		log.Info("assignment access denied",
			slog.Int("assignment_id", assignmentID),
			slog.String("reason", decision.Reason))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error(decision.Reason))
		return
	}

	log.Info("assignment access allowed", slog.Int("assignment_id", assignmentID))
	render.JSON(w, r, response.OKWithData(decision))
}

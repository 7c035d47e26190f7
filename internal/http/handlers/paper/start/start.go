// Package start реализует HTTP-обработчик начала экзаменационной работы:
// перед выдачей работы резолвер доступа решает, покрывает ли её
// действующий план пользователя.
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

// Service описывает интерфейс резолвера доступа к работам.
type Service interface {
	ResolvePaperAccess(ctx context.Context, userUID string, paperID int) (entitlement.Decision, error)
}

// Handler управляет HTTP-запросами начала работы.
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
// @Summary Начать экзаменационную работу
// @Description Проверяет доступ к работе по действующему плану. Отказ содержит причину для пользователя.
// @Tags Access
// @Produce json
// @Param id path int true "ID работы"
// @Success 200 {object} entitlement.Decision "Доступ разрешён"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещён с причиной"
// @Router /papers/{id}/start [post]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.paper.start"
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

	paperID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid paper id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid paper id"))
		return
	}

	decision, err := h.service.ResolvePaperAccess(r.Context(), userUID, paperID)
	if err != nil {
		log.Error("failed to resolve paper access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve access"))
		return
	}

	if !decision.Allowed {
		log.Info("paper access denied",
			slog.Int("paper_id", paperID),
			slog.String("reason", decision.Reason))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error(decision.Reason))
		return
	}

	log.Info("paper access allowed", slog.Int("paper_id", paperID))
	render.JSON(w, r, response.OKWithData(decision))
}

// Package exams реализует HTTP-обработчик списка экзаменов, доступных
// по тарифному плану пользователя.
package exams

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/examprep/entitlement-service/internal/http/middlewarectx"
	"github.com/examprep/entitlement-service/internal/http/response"
	"github.com/examprep/entitlement-service/internal/lib/sl"
	"github.com/examprep/entitlement-service/internal/models"
)

// Service описывает интерфейс выдачи каталога экзаменов.
type Service interface {
	ListExams(ctx context.Context, userUID string) ([]*models.Exam, error)
}

// Handler управляет HTTP-запросами списка экзаменов.
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
// @Summary Получить список доступных экзаменов
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.Exam "Экзамены, доступные по плану"
// @Router /catalog/exams [get]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.exams"
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

	exams, err := h.service.ListExams(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list exams", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load exams"))
		return
	}

	log.Info("listed exams", slog.Int("count", len(exams)))
	render.JSON(w, r, response.OKWithData(exams))
}

// Package papers реализует HTTP-обработчик списка экзаменационных работ,
// доступных по тарифному плану пользователя.
package papers

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

// Service описывает интерфейс выдачи каталога работ.
type Service interface {
	ListPapers(ctx context.Context, userUID string) ([]*models.Paper, error)
}

// Handler управляет HTTP-запросами списка работ.
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
// @Summary Получить список доступных работ
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.Paper "Работы, доступные по плану"
// @Router /catalog/papers [get]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.papers"
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

	papers, err := h.service.ListPapers(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list papers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load papers"))
		return
	}

	log.Info("listed papers", slog.Int("count", len(papers)))
	render.JSON(w, r, response.OKWithData(papers))
}

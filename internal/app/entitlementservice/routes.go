// Package entitlementservice предоставляет маршруты основного приложения.
package entitlementservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/examprep/entitlement-service/internal/config"
	assignmentstart "github.com/examprep/entitlement-service/internal/http/handlers/assignment/start"
	"github.com/examprep/entitlement-service/internal/http/handlers/auth/login"
	"github.com/examprep/entitlement-service/internal/http/handlers/auth/register"
	"github.com/examprep/entitlement-service/internal/http/handlers/catalog/exams"
	"github.com/examprep/entitlement-service/internal/http/handlers/catalog/papers"
	"github.com/examprep/entitlement-service/internal/http/handlers/onboarding"
	paperstart "github.com/examprep/entitlement-service/internal/http/handlers/paper/start"
	"github.com/examprep/entitlement-service/internal/http/handlers/payment/webhook"
	"github.com/examprep/entitlement-service/internal/http/handlers/status"
	"github.com/examprep/entitlement-service/internal/http/middlewarectx"
	"github.com/examprep/entitlement-service/internal/lib/jwt"
	authservice "github.com/examprep/entitlement-service/internal/services/auth"
	billingservice "github.com/examprep/entitlement-service/internal/services/billing"
	catalogservice "github.com/examprep/entitlement-service/internal/services/catalog"
	entitlementsvc "github.com/examprep/entitlement-service/internal/services/entitlement"
	statusservice "github.com/examprep/entitlement-service/internal/services/status"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker,
	authService *authservice.Service,
	entitlementService *entitlementsvc.Service,
	statusService *statusservice.Service,
	billingService *billingservice.Service,
	catalogService *catalogservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Статус отвечает и анонимам
		r.With(middlewarectx.OptionalJWTMiddleware(jwtMaker)).
			Get("/status", status.New(logger, statusService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/catalog/exams", exams.New(logger, catalogService).ServeHTTP)
			r.Get("/catalog/papers", papers.New(logger, catalogService).ServeHTTP)
			r.Post("/papers/{id}/start", paperstart.New(logger, entitlementService).ServeHTTP)
			r.Post("/assignments/{id}/start", assignmentstart.New(logger, entitlementService).ServeHTTP)
			r.Post("/onboarding", onboarding.New(logger, billingService).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации, с проверкой подписи)
		r.Post("/payments/webhook", webhook.New(logger, billingService, cfg.WebhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

// Package newsletter собирает HTTP-приложение рассылки.
package newsletter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	// Регистрация swagger-документации.
	_ "github.com/magabrotheeeer/newsletter/docs"
	"github.com/magabrotheeeer/newsletter/internal/http/handlers/subscription/confirm"
	"github.com/magabrotheeeer/newsletter/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/newsletter/internal/http/handlers/subscription/health"
	"github.com/magabrotheeeer/newsletter/internal/http/middlewarectx"
)

// SubscriptionService объединяет сценарии, которые нужны обработчикам.
type SubscriptionService interface {
	create.Service
	confirm.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	subscriptionService SubscriptionService,
	limiter *rate.Limiter,
	metricsHandler http.Handler,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health_check", health.New().ServeHTTP)

	r.Route("/subscriptions", func(r chi.Router) {
		r.With(middlewarectx.RateLimitMiddleware(logger, limiter)).
			Post("/", create.New(logger, subscriptionService).ServeHTTP)
		r.Get("/confirm", confirm.New(logger, subscriptionService).ServeHTTP)
	})

	r.Handle("/metrics", metricsHandler)
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

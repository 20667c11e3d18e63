// Package confirm реализует HTTP-обработчик перехода по ссылке подтверждения.
package confirm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/newsletter/internal/http/response"
	"github.com/magabrotheeeer/newsletter/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter/internal/lib/token"
	services "github.com/magabrotheeeer/newsletter/internal/services/subscription"
)

// Parameters — параметры строки запроса.
type Parameters struct {
	SubscriptionToken string `validate:"required,alphanum"`
}

// Handler подтверждает подписку по токену из ссылки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики подтверждения.
type Service interface {
	Confirm(ctx context.Context, subscriptionToken string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтвердить подписку
// @Description Переводит подписчика в статус confirmed. Повторный переход по ссылке тоже возвращает 200.
// @Tags Subscriptions
// @Produce  json
// @Param subscription_token query string true "Токен из письма"
// @Success 200 {object} response.Response "Подписка подтверждена"
// @Failure 400 {object} response.ErrorResponse "Токен отсутствует или имеет неверный формат"
// @Failure 401 {object} response.ErrorResponse "Неизвестный токен"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /subscriptions/confirm [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.confirm"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	params := Parameters{SubscriptionToken: r.URL.Query().Get("subscription_token")}
	if err := h.validate.Struct(params); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Info("invalid confirmation parameters", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		log.Error("validator failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if !token.Valid(params.SubscriptionToken) {
		log.Info("malformed subscription token")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed subscription token"))
		return
	}

	err := h.service.Confirm(r.Context(), params.SubscriptionToken)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidInput):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("malformed subscription token"))
		return
	case errors.Is(err, services.ErrTokenNotFound):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unknown subscription token"))
		return
	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not confirm subscription"))
		return
	}

	log.Info("subscription confirmed")
	render.JSON(w, r, response.OK())
}

// Package create реализует HTTP-обработчик заявки на подписку.
//
// Handler принимает форму application/x-www-form-urlencoded с полями name и email,
// проверяет наличие полей и передаёт их сервису, который сохраняет подписчика
// и отправляет письмо подтверждения. Лишние поля формы игнорируются.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ajg/form"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/newsletter/internal/http/response"
	"github.com/magabrotheeeer/newsletter/internal/lib/sl"
	services "github.com/magabrotheeeer/newsletter/internal/services/subscription"
)

// Request — поля формы подписки.
type Request struct {
	Name  string `form:"name" validate:"required"`
	Email string `form:"email" validate:"required"`
}

// Handler управляет HTTP-запросами на подписку.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис сценария подписки
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики подписки.
type Service interface {
	Subscribe(ctx context.Context, name, email string) error
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
// @Summary Подписаться на рассылку
// @Description Сохраняет подписчика в статусе pending_confirmation и отправляет письмо со ссылкой подтверждения.
// @Tags Subscriptions
// @Accept  x-www-form-urlencoded
// @Produce  json
// @Param name formData string true "Имя подписчика"
// @Param email formData string true "Email подписчика"
// @Success 200 {object} response.Response "Заявка принята"
// @Failure 400 {object} response.ErrorResponse "Некорректные или отсутствующие поля"
// @Failure 409 {object} response.ErrorResponse "Email уже подписан"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища или отправки письма"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	dec := form.NewDecoder(r.Body)
	dec.IgnoreUnknownKeys(true)
	if err := dec.Decode(&req); err != nil {
		log.Info("failed to decode form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validator failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	err := h.service.Subscribe(r.Context(), req.Name, req.Email)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidInput):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid name or email"))
		return
	case errors.Is(err, services.ErrDuplicateSubscriber):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("email is already subscribed"))
		return
	case errors.Is(err, services.ErrDispatch):
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send confirmation email"))
		return
	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create subscription"))
		return
	}

	log.Info("subscription request accepted")
	render.JSON(w, r, response.OK())
}

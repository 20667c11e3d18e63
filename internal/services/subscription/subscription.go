// Package services содержит сценарии оформления и подтверждения подписки на рассылку.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/newsletter/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter/internal/lib/token"
	"github.com/magabrotheeeer/newsletter/internal/metrics"
	"github.com/magabrotheeeer/newsletter/internal/models"
	"github.com/magabrotheeeer/newsletter/internal/storage/repository"
)

// Ошибки сценариев. Обработчики HTTP сопоставляют их с кодами ответа.
var (
	ErrInvalidInput        = errors.New("invalid subscription input")
	ErrDuplicateSubscriber = errors.New("subscriber already exists")
	ErrTokenNotFound       = errors.New("unknown subscription token")
	ErrStorage             = errors.New("storage failure")
	ErrDispatch            = errors.New("confirmation email dispatch failed")
)

// ConfirmPath путь, на который ведёт ссылка из письма.
const ConfirmPath = "/subscriptions/confirm"

// Причины отказа для метрики rejected.
const (
	reasonInvalidInput = "invalid_input"
	reasonDuplicate    = "duplicate"
	reasonUnknownToken = "unknown_token"
)

// SubscriberRepository определяет методы хранилища подписчиков.
type SubscriberRepository interface {
	// CreatePendingSubscriber атомарно сохраняет подписчика и его токен.
	CreatePendingSubscriber(ctx context.Context, sub models.NewSubscriber) (string, string, error)
	// ConfirmByToken переводит владельца токена в confirmed и возвращает его ID.
	ConfirmByToken(ctx context.Context, subscriptionToken string) (string, error)
	// GetSubscriber возвращает подписчика по ID.
	GetSubscriber(ctx context.Context, subscriberID string) (*models.Subscriber, error)
}

// ConfirmationSender отправляет письмо со ссылкой подтверждения.
type ConfirmationSender interface {
	SendConfirmationEmail(ctx context.Context, to models.SubscriberEmail, link string) error
}

// ConfirmedCache хранит уже подтверждённые токены.
type ConfirmedCache interface {
	ConfirmedSubscriber(ctx context.Context, token string) (string, bool, error)
	MarkConfirmed(ctx context.Context, token, subscriberID string) error
}

// EventPublisher публикует событие подтверждения подписки.
type EventPublisher interface {
	PublishConfirmed(ctx context.Context, event models.SubscriptionConfirmedEvent) error
}

// SubscriptionService реализует сценарии подписки.
type SubscriptionService struct {
	repo      SubscriberRepository
	sender    ConfirmationSender
	cache     ConfirmedCache
	publisher EventPublisher
	metrics   *metrics.Metrics
	baseURL   string
	log       *slog.Logger
	now       func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(
	repo SubscriberRepository,
	sender ConfirmationSender,
	cache ConfirmedCache,
	publisher EventPublisher,
	m *metrics.Metrics,
	baseURL string,
	log *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		sender:    sender,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		baseURL:   baseURL,
		log:       log,
		now:       time.Now,
	}
}

// ConfirmationLink строит ссылку подтверждения для токена.
func ConfirmationLink(baseURL, subscriptionToken string) string {
	return baseURL + ConfirmPath + "?subscription_token=" + subscriptionToken
}

// Subscribe проверяет данные формы, сохраняет подписчика в статусе
// pending_confirmation и синхронно отправляет письмо подтверждения.
// Если письмо не ушло, подписчик остаётся в базе.
func (s *SubscriptionService) Subscribe(ctx context.Context, name, email string) error {
	const op = "services.Subscribe"

	sub, err := models.NewSubscriberFromForm(name, email)
	if err != nil {
		s.metrics.IncRejected(reasonInvalidInput)
		s.log.Info("subscription rejected", slog.String("reason", err.Error()))
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidInput, err)
	}

	log := s.log.With(sl.Subscriber(sub.Email.String(), sub.Name.String()))

	_, subscriptionToken, err := s.repo.CreatePendingSubscriber(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriberExists) {
			s.metrics.IncRejected(reasonDuplicate)
			log.Info("subscriber already exists")
			return fmt.Errorf("%s: %w", op, ErrDuplicateSubscriber)
		}
		log.Error("failed to store pending subscriber", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}
	s.metrics.SubscriptionsCreated.Inc()

	link := ConfirmationLink(s.baseURL, subscriptionToken)
	if err = s.sender.SendConfirmationEmail(ctx, sub.Email, link); err != nil {
		s.metrics.DispatchFailures.Inc()
		log.Error("failed to send confirmation email", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrDispatch, err)
	}

	log.Info("pending subscriber stored, confirmation email sent")
	return nil
}

// Confirm подтверждает подписку по токену. Повторное подтверждение
// того же токена успешно и ничего не меняет.
func (s *SubscriptionService) Confirm(ctx context.Context, subscriptionToken string) error {
	const op = "services.Confirm"

	if !token.Valid(subscriptionToken) {
		s.metrics.IncRejected(reasonInvalidInput)
		return fmt.Errorf("%s: %w: malformed subscription token", op, ErrInvalidInput)
	}

	id, found, err := s.cache.ConfirmedSubscriber(ctx, subscriptionToken)
	if err != nil {
		s.log.Warn("confirmed token cache unavailable", sl.Err(err))
	}
	if found {
		s.metrics.SubscriptionsConfirmed.Inc()
		s.log.Debug("subscription already confirmed", slog.String("subscriber_id", id))
		return nil
	}

	id, err = s.repo.ConfirmByToken(ctx, subscriptionToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			s.metrics.IncRejected(reasonUnknownToken)
			s.log.Info("confirmation with unknown token")
			return fmt.Errorf("%s: %w", op, ErrTokenNotFound)
		}
		s.log.Error("failed to confirm subscriber", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}
	s.metrics.SubscriptionsConfirmed.Inc()

	if err = s.cache.MarkConfirmed(ctx, subscriptionToken, id); err != nil {
		s.log.Warn("failed to cache confirmed token", slog.String("subscriber_id", id), sl.Err(err))
	}
	s.publishConfirmed(ctx, id)

	s.log.Info("subscription confirmed", slog.String("subscriber_id", id))
	return nil
}

// publishConfirmed отправляет событие в брокер. Ошибки только логируются:
// подтверждение уже записано в базу.
func (s *SubscriptionService) publishConfirmed(ctx context.Context, subscriberID string) {
	sub, err := s.repo.GetSubscriber(ctx, subscriberID)
	if err != nil {
		s.log.Warn("failed to load confirmed subscriber", slog.String("subscriber_id", subscriberID), sl.Err(err))
		return
	}
	event := models.SubscriptionConfirmedEvent{
		SubscriberID: sub.ID,
		Email:        sub.Email,
		Name:         sub.Name,
		ConfirmedAt:  s.now().UTC(),
	}
	if err = s.publisher.PublishConfirmed(ctx, event); err != nil {
		s.log.Warn("failed to publish confirmation event",
			sl.Subscriber(sub.Email, sub.Name), sl.Err(err))
	}
}

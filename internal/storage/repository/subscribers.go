package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/newsletter/internal/models"
)

// CreatePendingSubscriber сохраняет подписчика в статусе pending_confirmation вместе
// с токеном подтверждения. Обе записи фиксируются одной транзакцией.
// Возвращает ID подписчика и выданный токен.
func (s *Storage) CreatePendingSubscriber(ctx context.Context, sub models.NewSubscriber) (string, string, error) {
	const op = "storage.CreatePendingSubscriber"
	select {
	case <-ctx.Done():
		return "", "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	subscriptionToken, err := s.newToken()
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	subscriberID := uuid.NewString()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", "", fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO subscriptions (id, email, name, subscribed_at, status)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, query,
		subscriberID, sub.Email.String(), sub.Name.String(), s.now().UTC(),
		string(models.StatusPendingConfirmation)); err != nil {
		if isUniqueViolation(err) {
			return "", "", fmt.Errorf("%s: %w", op, ErrSubscriberExists)
		}
		return "", "", fmt.Errorf("%s: insert subscriber: %w", op, err)
	}

	query = `INSERT INTO subscription_tokens (subscription_token, subscriber_id)
			 VALUES ($1, $2)`
	if _, err = tx.ExecContext(ctx, query, subscriptionToken, subscriberID); err != nil {
		return "", "", fmt.Errorf("%s: insert token: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return "", "", fmt.Errorf("%s: %w", op, ErrSubscriberExists)
		}
		return "", "", fmt.Errorf("%s: commit: %w", op, err)
	}
	return subscriberID, subscriptionToken, nil
}

// ConfirmByToken переводит владельца токена в статус confirmed и возвращает его ID.
// Повторное подтверждение уже подтверждённого подписчика не является ошибкой.
func (s *Storage) ConfirmByToken(ctx context.Context, subscriptionToken string) (string, error) {
	const op = "storage.ConfirmByToken"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1
			  FROM subscription_tokens t
			  WHERE t.subscriber_id = subscriptions.id
			    AND t.subscription_token = $2
			  RETURNING subscriptions.id`
	var subscriberID string
	err := s.DB.QueryRowContext(ctx, query, string(models.StatusConfirmed), subscriptionToken).Scan(&subscriberID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, ErrTokenNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return subscriberID, nil
}

// GetSubscriber возвращает подписчика по ID.
func (s *Storage) GetSubscriber(ctx context.Context, subscriberID string) (*models.Subscriber, error) {
	const op = "storage.GetSubscriber"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, name, subscribed_at, status
			  FROM subscriptions
			  WHERE id = $1`
	var (
		sub    models.Subscriber
		status string
	)
	err := s.DB.QueryRowContext(ctx, query, subscriberID).
		Scan(&sub.ID, &sub.Email, &sub.Name, &sub.SubscribedAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriberNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.Status = models.SubscriptionStatus(status)
	return &sub, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Package repository реализует хранилище подписчиков рассылки на основе PostgreSQL.
// Хранилище единолично владеет записями подписчиков и токенов подтверждения:
// создаёт их в одной транзакции и переводит подписчика в статус confirmed
// одним условным UPDATE.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/newsletter/internal/lib/token"
)

var (
	// ErrSubscriberExists возвращается при попытке повторно подписать тот же email.
	ErrSubscriberExists = errors.New("subscriber already exists")
	// ErrTokenNotFound возвращается, если токен подтверждения не выдавался.
	ErrTokenNotFound = errors.New("subscription token not found")
	// ErrSubscriberNotFound возвращается, если подписчик с таким ID отсутствует.
	ErrSubscriberNotFound = errors.New("subscriber not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с подписчиками и токенами.
type Storage struct {
	DB       *sql.DB
	newToken func() (string, error)
	now      func() time.Time
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithDB(db), nil
}

// NewWithDB оборачивает уже открытое соединение.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{
		DB:       db,
		newToken: token.Generate,
		now:      time.Now,
	}
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	for _, table := range []string{"subscriptions", "subscription_tokens"} {
		var exists bool
		err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)`, table).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("required table %s missing", table)
		}
	}
	return nil
}

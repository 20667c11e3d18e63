// Package models содержит доменные структуры подписчика рассылки:
// проверенные имя и email, заявку на подписку и сохранённую запись подписчика.
// Значения SubscriberName и SubscriberEmail можно получить только через функции разбора,
// поэтому непроверенные данные не попадают в хранилище.
package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/rivo/uniseg"
)

// ErrInvalidSubscriber возвращается, если имя или email не прошли проверку.
var ErrInvalidSubscriber = errors.New("invalid subscriber data")

const (
	maxNameGraphemes    = 256
	forbiddenNameRunes  = `/()"<>\{}`
	emailValidationRule = "required,email"
)

var validate = validator.New()

// SubscriptionStatus описывает состояние подписчика.
type SubscriptionStatus string

const (
	// StatusPendingConfirmation — подписчик создан, ссылка из письма ещё не открыта.
	StatusPendingConfirmation SubscriptionStatus = "pending_confirmation"
	// StatusConfirmed — подписка подтверждена.
	StatusConfirmed SubscriptionStatus = "confirmed"
)

// SubscriberName — проверенное имя подписчика.
type SubscriberName struct {
	value string
}

// ParseSubscriberName проверяет имя: оно не пустое, не длиннее 256 графем
// и не содержит запрещённых символов.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SubscriberName{}, fmt.Errorf("%w: subscriber name is empty", ErrInvalidSubscriber)
	}
	if uniseg.GraphemeClusterCount(trimmed) > maxNameGraphemes {
		return SubscriberName{}, fmt.Errorf("%w: subscriber name is longer than %d characters",
			ErrInvalidSubscriber, maxNameGraphemes)
	}
	if strings.ContainsAny(trimmed, forbiddenNameRunes) {
		return SubscriberName{}, fmt.Errorf("%w: subscriber name %q contains forbidden characters",
			ErrInvalidSubscriber, trimmed)
	}
	return SubscriberName{value: trimmed}, nil
}

func (n SubscriberName) String() string {
	return n.value
}

// SubscriberEmail — проверенный адрес электронной почты подписчика.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail проверяет синтаксис адреса правилом email валидатора
// и разбором net/mail. Адрес вида "Имя <addr>" не принимается.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if err := validate.Var(raw, emailValidationRule); err != nil {
		return SubscriberEmail{}, fmt.Errorf("%w: %q is not a valid subscriber email", ErrInvalidSubscriber, raw)
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return SubscriberEmail{}, fmt.Errorf("%w: %q is not a valid subscriber email", ErrInvalidSubscriber, raw)
	}
	return SubscriberEmail{value: raw}, nil
}

func (e SubscriberEmail) String() string {
	return e.value
}

// NewSubscriber — заявка на подписку, собранная только из проверенных значений.
type NewSubscriber struct {
	Email SubscriberEmail
	Name  SubscriberName
}

// NewSubscriberFromForm разбирает сырые поля формы в NewSubscriber.
func NewSubscriberFromForm(name, email string) (NewSubscriber, error) {
	parsedName, err := ParseSubscriberName(name)
	if err != nil {
		return NewSubscriber{}, err
	}
	parsedEmail, err := ParseSubscriberEmail(email)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Email: parsedEmail, Name: parsedName}, nil
}

// Subscriber — сохранённая запись подписчика.
type Subscriber struct {
	ID           string             // Уникальный идентификатор (UUID)
	Email        string             // Электронная почта, уникальна в хранилище
	Name         string             // Имя подписчика
	SubscribedAt time.Time          // Время создания заявки
	Status       SubscriptionStatus // pending_confirmation или confirmed
}

// SubscriptionConfirmedEvent публикуется в брокер после подтверждения подписки.
type SubscriptionConfirmedEvent struct {
	SubscriberID string    `json:"subscriber_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

// Package services реализует отправку писем подтверждения подписки.
// Тела писем строятся из шаблонов Liquid, HTML- и текстовая часть
// получают одну и ту же ссылку.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/osteele/liquid"

	"github.com/magabrotheeeer/newsletter/internal/emailclient"
	"github.com/magabrotheeeer/newsletter/internal/models"
)

// ErrDispatch возвращается, если письмо не удалось отправить.
var ErrDispatch = errors.New("failed to dispatch email")

const confirmationSubject = "Welcome!"

const confirmationHTMLTemplate = `Welcome to our newsletter!<br />` +
	`Click <a href="{{ link }}">here</a> to confirm your subscription.`

const confirmationTextTemplate = `Welcome to our newsletter!
Visit {{ link }} to confirm your subscription.`

// Transport доставляет готовое письмо провайдеру.
type Transport interface {
	Send(ctx context.Context, email emailclient.Email) error
}

// SenderService отправляет письма подтверждения подписки.
type SenderService struct {
	transport Transport
	sender    models.SubscriberEmail
	htmlTpl   *liquid.Template
	textTpl   *liquid.Template
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService и компилирует шаблоны писем.
func NewSenderService(transport Transport, sender models.SubscriberEmail, log *slog.Logger) (*SenderService, error) {
	const op = "services.NewSenderService"

	engine := liquid.NewEngine()
	htmlTpl, err := engine.ParseString(confirmationHTMLTemplate)
	if err != nil {
		return nil, fmt.Errorf("%s: html template: %w", op, err)
	}
	textTpl, err := engine.ParseString(confirmationTextTemplate)
	if err != nil {
		return nil, fmt.Errorf("%s: text template: %w", op, err)
	}

	return &SenderService{
		transport: transport,
		sender:    sender,
		htmlTpl:   htmlTpl,
		textTpl:   textTpl,
		log:       log,
	}, nil
}

// SendConfirmationEmail отправляет письмо со ссылкой подтверждения на адрес to.
func (s *SenderService) SendConfirmationEmail(ctx context.Context, to models.SubscriberEmail, link string) error {
	const op = "services.SendConfirmationEmail"

	bindings := map[string]any{"link": link}
	htmlBody, renderErr := s.htmlTpl.RenderString(bindings)
	if renderErr != nil {
		return fmt.Errorf("%s: %w: render html: %w", op, ErrDispatch, renderErr)
	}
	textBody, renderErr := s.textTpl.RenderString(bindings)
	if renderErr != nil {
		return fmt.Errorf("%s: %w: render text: %w", op, ErrDispatch, renderErr)
	}

	err := s.transport.Send(ctx, emailclient.Email{
		From:     s.sender.String(),
		To:       to.String(),
		Subject:  confirmationSubject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrDispatch, err)
	}

	s.log.Debug("confirmation email sent", slog.String("to", to.String()))
	return nil
}

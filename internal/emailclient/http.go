package emailclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnexpectedStatus возвращается, если провайдер ответил статусом вне диапазона 2xx.
var ErrUnexpectedStatus = errors.New("unexpected status")

// HTTPClient отправляет письма через HTTP API провайдера.
type HTTPClient struct {
	baseURL            string
	authorizationToken string
	httpClient         *http.Client
}

type sendEmailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HTMLBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// NewHTTPClient создаёт клиент провайдера. timeout ограничивает весь запрос целиком.
func NewHTTPClient(baseURL, authorizationToken string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:            strings.TrimRight(baseURL, "/"),
		authorizationToken: authorizationToken,
		httpClient:         &http.Client{Timeout: timeout},
	}
}

// Send отправляет письмо запросом POST {baseURL}/email.
func (c *HTTPClient) Send(ctx context.Context, email Email) error {
	const op = "emailclient.HTTPClient.Send"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(sendEmailRequest{
		From:     email.From,
		To:       email.To,
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.authorizationToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s: %w: %s", op, ErrUnexpectedStatus, resp.Status)
	}
	return nil
}

// Package emailclient содержит транспорты отправки писем: HTTP API провайдера
// (формат Postmark) и AWS SES v2. Оба транспорта реализуют один метод Send
// и любой неуспешный ответ провайдера возвращают ошибкой.
package emailclient

// Email — письмо, готовое к отправке.
type Email struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

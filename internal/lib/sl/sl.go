// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — упростить формирование структурированных полей лога:
// ошибок и полей корреляции по подписчику.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Subscriber группирует email и имя подписчика для корреляции записей лога.
// Токен подтверждения сюда намеренно не входит и в логи не пишется.
func Subscriber(email, name string) slog.Attr {
	return slog.Group("subscriber",
		slog.String("email", email),
		slog.String("name", name),
	)
}

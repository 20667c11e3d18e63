// Package token генерирует и проверяет токены подтверждения подписки.
package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length — длина токена. 25 символов из 62-символьного алфавита дают около 148 бит энтропии.
const Length = 25

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var alphabetSize = big.NewInt(int64(len(alphabet)))

// Generate возвращает случайный URL-безопасный токен длины Length.
func Generate() (string, error) {
	const op = "token.Generate"
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Valid сообщает, похожа ли строка на выданный токен.
func Valid(t string) bool {
	if len(t) != Length {
		return false
	}
	for i := 0; i < len(t); i++ {
		c := t[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Package migrations содержит SQL-миграции схемы, встроенные в бинарник.
package migrations

import "embed"

// FS — файлы миграций в формате golang-migrate.
//
//go:embed *.sql
var FS embed.FS

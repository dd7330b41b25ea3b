// Package migrations は users テーブルのスキーマを埋め込みます。
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Package users は認証情報（ユーザー名とパスワードハッシュ）の永続化を提供します。
package users

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound はユーザーが存在しない場合に返されます。
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername は同じユーザー名が既に登録済みの場合に返されます。
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrStoreUnavailable はストアに接続できない場合に返されます。
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// User はユーザーレコードです。PasswordHash はクライアントへ返しません。
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store は認証情報ストアの契約です。
// ユーザー名の一意性は Create 自体がアトミックに保証しなければなりません。
type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	Ping(ctx context.Context) error
	Close() error
}

package users

import "context"

// UnavailableStore は接続先が設定されていない場合に使う Store です。
// すべての操作が ErrStoreUnavailable を返すため、サーバーは落ちずに縮退運転します。
type UnavailableStore struct{}

func (UnavailableStore) FindByUsername(context.Context, string) (*User, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableStore) Create(context.Context, string, string) (*User, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableStore) Ping(context.Context) error { return ErrStoreUnavailable }

func (UnavailableStore) Close() error { return nil }

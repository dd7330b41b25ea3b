package users

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
)

// OpenOptions は Open の追加設定です。
type OpenOptions struct {
	MaxConns int
}

// Open は接続文字列のスキームから Store を選びます。
//
//	""                         -> UnavailableStore（縮退運転）
//	postgres:// postgresql://  -> PostgresStore
//	redis:// rediss://         -> RedisStore
//	memory://                  -> MemoryStore
//
// どのバックエンドも接続は遅延されるため、この時点ではネットワークに触れません。
func Open(rawURL string, opts OpenOptions) (Store, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return UnavailableStore{}, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid store url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		db, err := sql.Open("pgx", rawURL)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if opts.MaxConns > 0 {
			db.SetMaxOpenConns(opts.MaxConns)
		}
		return NewPostgresStore(db), nil
	case "redis", "rediss":
		opt, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		if opts.MaxConns > 0 {
			opt.PoolSize = opts.MaxConns
		}
		return NewRedisStore(redis.NewClient(opt)), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}

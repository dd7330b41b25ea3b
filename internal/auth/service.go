package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yourusername/auth-api/internal/users"
)

const (
	// MinPasswordLength はパスワードの最小文字数です（バイト数ではなく文字数）。
	MinPasswordLength = 6
	// maxPasswordBytes は bcrypt が扱える上限です。
	maxPasswordBytes = 72

	defaultStoreTimeout = 5 * time.Second
)

// LoginResult はログイン成功時の結果です。
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *users.User
}

// ServiceOptions は Service の任意設定です。
type ServiceOptions struct {
	StoreTimeout time.Duration
}

// Service はサインアップとログインを担います。HTTP には依存しません。
type Service struct {
	store        users.Store
	hasher       PasswordHasher
	tokens       *TokenIssuer
	storeTimeout time.Duration

	// ユーザーが存在しない場合にも照合コストを払うためのダミーハッシュ
	dummyHash string
}

// NewService は Service を作成します。
func NewService(store users.Store, hasher PasswordHasher, tokens *TokenIssuer, opts ServiceOptions) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if hasher == nil {
		return nil, errors.New("hasher is nil")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is nil")
	}
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	timeout := opts.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &Service{
		store:        store,
		hasher:       hasher,
		tokens:       tokens,
		storeTimeout: timeout,
		dummyHash:    dummy,
	}, nil
}

// Tokens はトークン発行器を返します。
func (s *Service) Tokens() *TokenIssuer { return s.tokens }

// Signup は新しいユーザーを登録します。
func (s *Service) Signup(ctx context.Context, username, password string) (*users.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, validationError(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return nil, validationError(fmt.Sprintf("Password must be at most %d bytes long", maxPasswordBytes))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", ErrInternal, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.store.Create(ctx, username, hash)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

// Login は認証情報を照合し、成功時にトークンを発行します。
// ユーザー不在とパスワード不一致は同じ ErrInvalidCredentials になります。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	user, err := s.store.FindByUsername(lookupCtx, username)
	cancel()
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, mapStoreError(err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// CheckStore はストアへの疎通をその場で確認します。
func (s *Service) CheckStore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.Ping(ctx)
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return validationError("Username and password are required")
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, users.ErrDuplicateUsername), errors.Is(err, users.ErrStoreUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

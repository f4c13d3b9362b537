// Package auth はユーザー登録・ログイン・トークン操作の業務ロジックを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/repository"
	"github.com/hitoshi/storefront/internal/validation"
)

// 登録時のバリデーション境界値。
const (
	maxNameLength     = 255
	minPasswordLength = 8
)

// TokenService は認証サービスが必要とするトークン操作のインターフェース。
// token.Serviceの部分集合として定義する。
type TokenService interface {
	// Issue は指定ユーザーのトークンを発行し、有効期間（秒）とともに返す。
	Issue(userID string) (string, int, error)
	// Refresh は旧トークンを失効させ、同一ユーザーの新トークンを発行する。
	Refresh(tokenString string) (string, int, error)
	// Invalidate はトークンを自然満了まで失効させる。冪等。
	Invalidate(tokenString string) error
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users      repository.UserRepository
	tokens     TokenService
	bcryptCost int
	now        func() time.Time
}

// NewService はServiceを生成する。
// bcryptCostに0以下を渡した場合はbcrypt.DefaultCostを使用する。
func NewService(users repository.UserRepository, tokens TokenService, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Result は登録・ログイン・リフレッシュの成功結果。
type Result struct {
	User        *model.User
	AccessToken string
	ExpiresIn   int
}

// Register は新規ユーザーを作成し、トークンを発行する。
// バリデーション違反はフィールドごとに全件集約してValidationErrorで返す。
// メールアドレスの一意性は事前検索とDBユニーク制約の両方で担保する。
func (s *Service) Register(ctx context.Context, name, email, password string) (*Result, error) {
	var c validation.Collector

	if name == "" {
		c.Add("name", "The name field is required.")
	} else if len(name) > maxNameLength {
		c.Add("name", fmt.Sprintf("The name field must not be greater than %d characters.", maxNameLength))
	}

	switch {
	case email == "":
		c.Add("email", "The email field is required.")
	case !isValidEmail(email):
		c.Add("email", "The email field must be a valid email address.")
	default:
		existing, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if existing != nil {
			c.Add("email", "The email has already been taken.")
		}
	}

	if password == "" {
		c.Add("password", "The password field is required.")
	} else if len(password) < minPasswordLength {
		c.Add("password", fmt.Sprintf("The password field must be at least %d characters.", minPasswordLength))
	}

	if err := c.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// 事前検索とINSERTの間に同一メールの登録が滑り込んだ場合
		if err == repository.ErrDuplicateEmail {
			var dup validation.Collector
			dup.Add("email", "The email has already been taken.")
			return nil, dup.Err()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	accessToken, expiresIn, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return &Result{User: user, AccessToken: accessToken, ExpiresIn: expiresIn}, nil
}

// Login はメールアドレスとパスワードを検証し、トークンを発行する。
// メールアドレスの存在有無とパスワード不一致を区別せず、
// いずれもInvalidCredentialsとして返す（ユーザー列挙の防止）。
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	accessToken, expiresIn, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &Result{User: user, AccessToken: accessToken, ExpiresIn: expiresIn}, nil
}

// Logout は提示されたトークンを失効させる。
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	return s.tokens.Invalidate(tokenString)
}

// Refresh は旧トークンを失効させ、同一ユーザーの新しいトークンを発行する。
// userIDはミドルウェアで検証済みのトークンから取得したものを渡す。
func (s *Service) Refresh(ctx context.Context, userID, tokenString string) (*Result, error) {
	newToken, expiresIn, err := s.tokens.Refresh(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError()
	}

	return &Result{User: user, AccessToken: newToken, ExpiresIn: expiresIn}, nil
}

// CurrentUser は検証済みトークンに紐づくユーザーを返す。
// ユーザーが既に削除されている場合はUnauthenticatedを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError()
	}
	return user, nil
}

// isValidEmail はメールアドレスの形式を検証する。
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

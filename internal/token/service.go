package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// トークン検証の失敗原因。ハンドラー層で401メッセージの出し分けに使用する。
var (
	// ErrExpired はトークンの有効期限切れを表す。
	ErrExpired = errors.New("token has expired")
	// ErrInvalid は署名不正・形式不正なトークンを表す。
	ErrInvalid = errors.New("token is invalid")
	// ErrRevoked は失効セットに記録済みのトークンを表す。
	ErrRevoked = errors.New("token has been revoked")
)

// signingMethod は許可する署名アルゴリズム。alg none攻撃を防ぐため固定する。
var signingMethod = jwt.SigningMethodHS256

// Metrics はトークン発行・失効件数の計測インターフェース。
type Metrics interface {
	RecordTokenIssued()
	RecordTokenRevoked()
}

// Service はユーザーIDと有効期限を結び付けた署名トークンのライフサイクルを管理する。
// 署名はステートレスで、失効のみDenylistで追跡する。
type Service struct {
	secret   []byte
	ttl      time.Duration
	denylist *Denylist
	metrics  Metrics
	now      func() time.Time
}

// NewService はServiceを生成する。
// secretはHMAC署名鍵、ttlは発行するトークンの有効期間。
func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{
		secret:   secret,
		ttl:      ttl,
		denylist: NewDenylist(),
		now:      time.Now,
	}
}

// SetMetrics は計測の記録先を設定する。未設定の場合は記録しない。
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

// ExpiresIn は発行するトークンの有効期間を秒単位で返す。
// レスポンスのexpires_inフィールドに使用する。
func (s *Service) ExpiresIn() int {
	return int(s.ttl.Seconds())
}

// Denylist は失効セットを返す。serveモードでの定期スイープ用。
func (s *Service) Denylist() *Denylist {
	return s.denylist
}

// Issue は指定ユーザーに紐づく署名トークンを発行する。
// 発行ごとに新しいjtiを採番するため、同一ユーザーでもトークンは毎回異なる。
func (s *Service) Issue(userID string) (string, int, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTokenIssued()
	}

	return signed, s.ExpiresIn(), nil
}

// Validate はトークンを検証し、紐づくユーザーIDを返す。
// 失敗原因に応じてErrExpired、ErrInvalid、ErrRevokedのいずれかを返す。
func (s *Service) Validate(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}

	if s.denylist.IsRevoked(claims.ID) {
		return "", ErrRevoked
	}

	return claims.Subject, nil
}

// Refresh は提示されたトークンを検証し、同一ユーザーの新しいトークンを発行する。
// 発行に成功した場合のみ旧トークンのjtiを自然満了まで失効させる。
// 旧トークンが検証を通らない場合はValidateと同じ失敗原因を返す。
func (s *Service) Refresh(tokenString string) (string, int, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", 0, err
	}
	if s.denylist.IsRevoked(claims.ID) {
		return "", 0, ErrRevoked
	}

	newToken, expiresIn, err := s.Issue(claims.Subject)
	if err != nil {
		return "", 0, err
	}

	s.revoke(claims)
	return newToken, expiresIn, nil
}

// Invalidate はトークンのjtiを自然満了まで失効として記録する。冪等。
// 失効済みトークンの再失効はエラーにしない。
func (s *Service) Invalidate(tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		// 期限切れトークンは追跡不要（検証側で常に拒否される）
		if errors.Is(err, ErrExpired) {
			return nil
		}
		return err
	}

	s.revoke(claims)
	return nil
}

// revoke はクレームのjtiを失効セットに記録し、計測を行う。
func (s *Service) revoke(claims *jwt.RegisteredClaims) {
	s.denylist.Revoke(claims.ID, claims.ExpiresAt.Time)
	if s.metrics != nil {
		s.metrics.RecordTokenRevoked()
	}
}

// parse はトークン文字列を検証付きでパースし、クレームを返す。
// 署名・形式・有効期限の検証のみを行い、失効セットは参照しない。
func (s *Service) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalid
	}

	return claims, nil
}

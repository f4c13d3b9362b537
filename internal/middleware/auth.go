// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
	userIDContextKey = contextKey("user_id")
	// bearerTokenContextKey は検証済みの生トークン文字列を格納するためのキー。
	// logout/refreshハンドラーがトークン自体を必要とするため保持する。
	bearerTokenContextKey = contextKey("bearer_token")
)

// TokenValidator はトークン検証に必要なインターフェース。
// token.Serviceの部分集合として定義する。
type TokenValidator interface {
	// Validate はトークンを検証し、紐づくユーザーIDを返す。
	Validate(tokenString string) (string, error)
}

// AuthMetrics は認証失敗の計測インターフェース。nilの場合は記録しない。
type AuthMetrics interface {
	RecordAuthFailure(cause string)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 検証済みユーザーIDと生トークンをリクエストコンテキストに注入する。
// 失敗時は原因別のメッセージで401を返し、原因・パス・呼び出し元アドレスを監査ログに記録する。
func NewAuthMiddleware(tokens TokenValidator, metrics AuthMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				rejectUnauthenticated(w, r, metrics, "missing", model.NewTokenMissingError())
				return
			}

			userID, err := tokens.Validate(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrExpired):
					rejectUnauthenticated(w, r, metrics, "expired", model.NewTokenExpiredError())
				case errors.Is(err, token.ErrInvalid), errors.Is(err, token.ErrRevoked):
					rejectUnauthenticated(w, r, metrics, "invalid", model.NewTokenInvalidError())
				default:
					rejectUnauthenticated(w, r, metrics, "unknown", model.NewUnauthenticatedError())
				}
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			ctx = context.WithValue(ctx, bearerTokenContextKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// ヘッダーが無い、スキームがBearerでない、トークン部が空の場合はfalseを返す。
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, tokenString, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", false
	}
	return tokenString, true
}

// rejectUnauthenticated は監査ログを記録してから401レスポンスを返す。
func rejectUnauthenticated(w http.ResponseWriter, r *http.Request, metrics AuthMetrics, cause string, apiErr *model.APIError) {
	slog.Warn("bearer token rejected",
		slog.String("cause", cause),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)
	if metrics != nil {
		metrics.RecordAuthFailure(cause)
	}
	WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// BearerTokenFromContext はリクエストコンテキストから検証済みの生トークンを取得する。
func BearerTokenFromContext(ctx context.Context) (string, error) {
	tokenString, ok := ctx.Value(bearerTokenContextKey).(string)
	if !ok || tokenString == "" {
		return "", fmt.Errorf("bearer token not found in context")
	}
	return tokenString, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// ContextWithBearerToken はコンテキストに生トークンを注入する。テスト用。
func ContextWithBearerToken(ctx context.Context, tokenString string) context.Context {
	return context.WithValue(ctx, bearerTokenContextKey, tokenString)
}

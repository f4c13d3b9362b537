// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Codeはハンドラー層でHTTPステータスコードへのマッピングに使用し、
// Messageはそのままレスポンスボディのmessageフィールドになる。
type APIError struct {
	Code    string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenMissing       = "TOKEN_MISSING"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeInvalidPage        = "INVALID_PAGE"
	ErrCodeValidation         = "VALIDATION_FAILED"
)

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeProductNotFound,
		Message: "Product not found",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレスの存在有無を漏らさないよう、原因によらず同一メッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredentials,
		Message: "Invalid credentials",
	}
}

// NewTokenExpiredError はトークン期限切れエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenExpired,
		Message: "Token has expired. Please login again.",
	}
}

// NewTokenInvalidError は不正トークンエラーを生成する。
// 署名不正・形式不正・失効済みのいずれもこのエラーに倒す。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenInvalid,
		Message: "Token is invalid.",
	}
}

// NewTokenMissingError はトークン未提示エラーを生成する。
func NewTokenMissingError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenMissing,
		Message: "Token not provided.",
	}
}

// NewUnauthenticatedError は原因を特定しない認証エラーを生成する。
// 認証経路での想定外の失敗はすべてこのエラーに丸める。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthenticated,
		Message: "Unauthenticated. Please provide a valid Bearer token.",
	}
}

// NewInvalidPageError は不正なページ番号エラーを生成する。
// pageが0以下の場合にのみ使用する。範囲外の大きなページは空スライスを返す。
func NewInvalidPageError(page int) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidPage,
		Message: fmt.Sprintf("Invalid page number: %d", page),
	}
}

// ValidationError はフィールド単位のバリデーション違反の集約を表す。
// 最初の違反で打ち切らず、全フィールドの全違反を列挙する。
type ValidationError struct {
	Fields map[string][]string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %d field(s) failed validation", ErrCodeValidation, len(e.Fields))
}

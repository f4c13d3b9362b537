// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は外部フィード由来のテキストをサニタイズし、
// タグの混入したタイトルや説明文が格納時・表示時に悪用されることを防ぐ。
// bluemondayのStrictPolicyを使用し、HTMLタグをすべて除去したプレーンテキストのみを通す。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は外部由来テキストのサニタイズ機能のインターフェースを定義する。
// シードインポートで商品のタイトル・説明文・カテゴリの保存前に使用される。
type TextSanitizerService interface {
	// Sanitize はテキストからすべてのHTMLタグを除去し、前後の空白を取り除いて返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグと属性を除去し、テキストノードのみを残す。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストからすべてのHTMLタグを除去し、前後の空白を取り除いて返す。
func (s *textSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

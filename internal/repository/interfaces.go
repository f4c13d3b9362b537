// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/storefront/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
// 一意性の最終的な担保はDBのユニークインデックスに委ねる。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスの一意制約違反の場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// ProductQuery は商品一覧の検索条件を表す。
// 各条件は独立した任意指定で、search以外はAND結合される。
// searchのみtitle/descriptionの2フィールドに対するOR結合。
// ソートは常に最後に適用される。
type ProductQuery struct {
	// Search はtitleまたはdescriptionに対する部分一致（大文字小文字を区別しない）。
	Search string
	// Category はカテゴリの完全一致。
	Category string
	// MinPrice は価格の下限（price >= MinPrice）。nilの場合は無条件。
	MinPrice *float64
	// MaxPrice は価格の上限（price <= MaxPrice)。nilの場合は無条件。
	MaxPrice *float64
	// Sort はソート種別。ゼロ値はID降順として扱う。
	Sort model.ProductSort
	// Limit は取得件数の上限。
	Limit int
	// Offset は取得開始位置。
	Offset int
}

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Product, error)

	// List は検索条件に一致する商品のスライスと、
	// ページネーション適用前の総件数を返す。
	List(ctx context.Context, q ProductQuery) ([]model.Product, int, error)

	// Create は商品を作成し、採番されたIDとタイムスタンプをproductに書き戻す。
	Create(ctx context.Context, product *model.Product) error

	// Update は商品の全フィールドを上書き更新する。
	// 部分更新のフィールドマージは呼び出し元（catalogサービス）の責務。
	Update(ctx context.Context, product *model.Product) error

	// Delete は指定IDの商品を削除する。削除対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id int64) (bool, error)
}

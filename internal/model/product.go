// Package model はドメインモデルを定義する。
package model

import "time"

// Product はカタログ上の商品を表す。
type Product struct {
	ID          int64
	Title       string
	Description string
	Price       float64
	Category    string
	Image       string
	Rating      *Rating
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Rating は商品の評価を表す。商品作成時に省略可能。
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// ProductSort は商品一覧のソート種別を表す。
type ProductSort string

const (
	// ProductSortPriceAsc は価格昇順ソート。
	ProductSortPriceAsc ProductSort = "price_asc"
	// ProductSortPriceDesc は価格降順ソート。
	ProductSortPriceDesc ProductSort = "price_desc"
	// ProductSortNewest は作成日時降順ソート。
	ProductSortNewest ProductSort = "newest"
	// ProductSortDefault はID降順ソート。未指定・未対応の値はすべてこれに倒す。
	ProductSortDefault ProductSort = "id_desc"
)

// ParseProductSort はクエリパラメータのsort値をProductSortに解決する。
// 未対応の値はProductSortDefaultに倒す。
func ParseProductSort(s string) ProductSort {
	switch s {
	case string(ProductSortPriceAsc):
		return ProductSortPriceAsc
	case string(ProductSortPriceDesc):
		return ProductSortPriceDesc
	case string(ProductSortNewest):
		return ProductSortNewest
	default:
		return ProductSortDefault
	}
}

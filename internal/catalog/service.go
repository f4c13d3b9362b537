// Package catalog は商品カタログのCRUDと検索の業務ロジックを提供する。
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/repository"
)

// PerPage は商品一覧の1ページあたりの件数（固定）。
const PerPage = 12

// Service はカタログに関するビジネスロジックを提供する。
type Service struct {
	products repository.ProductRepository
}

// NewService はServiceを生成する。
func NewService(products repository.ProductRepository) *Service {
	return &Service{products: products}
}

// ListParams は商品一覧の検索・ソート・ページ指定を表す。
// フィルタはすべて任意で、searchのみtitle/descriptionに対するOR、他はAND結合。
type ListParams struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sort     model.ProductSort
	// Page は1始まりのページ番号。0以下はInvalidPageエラー。
	Page int
}

// Page は商品一覧のページネーション済み結果。
type Page struct {
	CurrentPage int
	Items       []model.Product
	LastPage    int
	PerPage     int
	Total       int
}

// List は検索条件に一致する商品を固定ページサイズでページネーションして返す。
// ページ番号が0以下の場合はInvalidPageエラーを返す。
// 総件数を超えるページ番号は空スライスを返す（エラーにしない）。
func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	if params.Page <= 0 {
		return nil, model.NewInvalidPageError(params.Page)
	}

	query := repository.ProductQuery{
		Search:   params.Search,
		Category: params.Category,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Sort:     params.Sort,
		Limit:    PerPage,
		Offset:   (params.Page - 1) * PerPage,
	}

	items, total, err := s.products.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	lastPage := (total + PerPage - 1) / PerPage
	if lastPage < 1 {
		lastPage = 1
	}

	return &Page{
		CurrentPage: params.Page,
		Items:       items,
		LastPage:    lastPage,
		PerPage:     PerPage,
		Total:       total,
	}, nil
}

// Get は指定IDの商品を返す。存在しない場合はProductNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError()
	}
	return product, nil
}

// Create は商品を新規作成する。
// 必須フィールドと境界値の違反を全件集約してValidationErrorで返す。
func (s *Service) Create(ctx context.Context, input ProductInput) (*model.Product, error) {
	if err := validateProduct(input, false); err != nil {
		return nil, err
	}

	product := &model.Product{
		Title:       *input.Title,
		Description: *input.Description,
		Price:       *input.Price,
		Category:    *input.Category,
		Image:       *input.Image,
		Rating:      input.Rating,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	slog.Info("product created",
		slog.Int64("product_id", product.ID),
		slog.String("category", product.Category),
	)

	return product, nil
}

// Update は商品を部分更新する。指定されたフィールドのみを検証・反映し、
// 未指定のフィールドは既存値を維持する。
// 商品が存在しない場合はProductNotFoundエラーを返す。
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError()
	}

	if err := validateProduct(input, true); err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Image != nil {
		product.Image = *input.Image
	}
	if input.Rating != nil {
		product.Rating = input.Rating
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	slog.Info("product updated",
		slog.Int64("product_id", product.ID),
	)

	return product, nil
}

// Delete は指定IDの商品を削除する。
// 商品が存在しない場合はProductNotFoundエラーを返し、状態は変更しない。
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.NewProductNotFoundError()
	}

	slog.Info("product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}

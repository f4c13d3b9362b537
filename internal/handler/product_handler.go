package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storefront/internal/catalog"
	"github.com/hitoshi/storefront/internal/middleware"
	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/token"
)

// CatalogServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	// List は検索条件に一致する商品をページネーションして返す。
	List(ctx context.Context, params catalog.ListParams) (*catalog.Page, error)
	// Get は指定IDの商品を返す。
	Get(ctx context.Context, id int64) (*model.Product, error)
	// Create は商品を新規作成する。
	Create(ctx context.Context, input catalog.ProductInput) (*model.Product, error)
	// Update は商品を部分更新する。
	Update(ctx context.Context, id int64, input catalog.ProductInput) (*model.Product, error)
	// Delete は指定IDの商品を削除する。
	Delete(ctx context.Context, id int64) error
}

// ProductHandler は商品カタログのHTTPハンドラー。
type ProductHandler struct {
	service CatalogServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service CatalogServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// --- リクエスト/レスポンス型 ---

// productRequest は商品の作成・部分更新リクエストのボディ。
// nilのフィールドは未指定を意味する。
type productRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Price       *float64      `json:"price"`
	Category    *string       `json:"category"`
	Image       *string       `json:"image"`
	Rating      *model.Rating `json:"rating"`
}

func (req productRequest) toInput() catalog.ProductInput {
	return catalog.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Rating:      req.Rating,
	}
}

// productResponse は商品情報のAPIレスポンス。
type productResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Category    string        `json:"category"`
	Image       string        `json:"image"`
	Rating      *model.Rating `json:"rating"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// productListResponse は商品一覧のページネーション済みレスポンス。
type productListResponse struct {
	CurrentPage int               `json:"current_page"`
	Data        []productResponse `json:"data"`
	LastPage    int               `json:"last_page"`
	PerPage     int               `json:"per_page"`
	Total       int               `json:"total"`
}

func toProductResponse(product *model.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		Image:       product.Image,
		Rating:      product.Rating,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// List は商品一覧を検索・ソート・ページネーション付きで返す。
// GET /products?search=&category=&min_price=&max_price=&sort=&page=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params, apiErr := parseListParams(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	page, err := h.service.List(r.Context(), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := make([]productResponse, len(page.Items))
	for i := range page.Items {
		data[i] = toProductResponse(&page.Items[i])
	}

	writeJSONResponse(w, http.StatusOK, productListResponse{
		CurrentPage: page.CurrentPage,
		Data:        data,
		LastPage:    page.LastPage,
		PerPage:     page.PerPage,
		Total:       page.Total,
	})
}

// Show は商品詳細を返す。
// GET /products/{id}
func (h *ProductHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProductID(w, r)
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toProductResponse(product))
}

// Create は商品を新規作成する。
// POST /products（要認証）
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	product, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toProductResponse(product))
}

// Update は商品を部分更新する。
// PUT/PATCH /products/{id}（要認証）
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	product, err := h.service.Update(r.Context(), id, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toProductResponse(product))
}

// Delete は商品を削除する。
// DELETE /products/{id}（要認証）
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProductID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "Product deleted"})
}

// parseListParams はクエリパラメータからListParamsを組み立てる。
// 数値として解釈できないmin_price/max_priceは未指定として扱う。
// pageは未指定・解釈不能なら1、明示的に0以下ならInvalidPageを返す。
func parseListParams(r *http.Request) (catalog.ListParams, *model.APIError) {
	q := r.URL.Query()

	params := catalog.ListParams{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     model.ParseProductSort(q.Get("sort")),
		Page:     1,
	}

	if v := q.Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MinPrice = &f
		}
	}
	if v := q.Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MaxPrice = &f
		}
	}
	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			if page <= 0 {
				return params, model.NewInvalidPageError(page)
			}
			params.Page = page
		}
	}

	return params, nil
}

// parseProductID はパスパラメータの商品IDを解釈する。
// 数値でないIDは該当商品なしとして404を返す。
func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewProductNotFoundError())
		return 0, false
	}
	return id, true
}

// --- 共通レスポンスヘルパー ---

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットのレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeInvalidBodyResponse はJSONボディの解析失敗に対する400レスポンスを書き込む。
func writeInvalidBodyResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:    "INVALID_REQUEST",
		Message: "The request body could not be parsed as JSON.",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
// バリデーション違反は422、APIErrorはコード別のステータス、トークンエラーは401、
// それ以外は詳細をログに残して不透明な500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		middleware.WriteValidationErrorResponse(w, valErr)
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// サービス層を素通りしたトークンエラー（logout/refresh経路）
	switch {
	case errors.Is(err, token.ErrExpired):
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewTokenExpiredError())
		return
	case errors.Is(err, token.ErrInvalid), errors.Is(err, token.ErrRevoked):
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewTokenInvalidError())
		return
	}

	// 想定外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeProductNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidCredentials,
		model.ErrCodeTokenExpired,
		model.ErrCodeTokenInvalid,
		model.ErrCodeTokenMissing,
		model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidPage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Package seed は外部の公開カタログフィードからの商品シードインポートを提供する。
// ランタイムのリクエスト処理には関与しない、一回限りの投入処理。
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/repository"
	"github.com/hitoshi/storefront/internal/security"
)

// maxResponseSize はフィードレスポンスの最大読み取りサイズ。
const maxResponseSize = 5 << 20 // 5MiB

// ImportMetrics はインポート件数の計測インターフェース。nilの場合は記録しない。
type ImportMetrics interface {
	RecordProductsImported(count int)
}

// Importer は外部カタログフィードを取得し、商品レコードとして登録する。
// フィールドはフィードの形式からmodel.Productへ1対1でマッピングされる。
type Importer struct {
	products  repository.ProductRepository
	client    *http.Client
	sanitizer security.TextSanitizerService
	logger    *slog.Logger
	sourceURL string
	metrics   ImportMetrics
}

// NewImporter はImporterを生成する。
// clientにはSSRF防止機能付きのHTTPクライアント（security.FetchGuardService）を渡すこと。
func NewImporter(
	products repository.ProductRepository,
	client *http.Client,
	sanitizer security.TextSanitizerService,
	logger *slog.Logger,
	sourceURL string,
	metrics ImportMetrics,
) *Importer {
	return &Importer{
		products:  products,
		client:    client,
		sanitizer: sanitizer,
		logger:    logger,
		sourceURL: sourceURL,
		metrics:   metrics,
	}
}

// feedProduct は外部フィードの商品1件を表す。
type feedProduct struct {
	Title       string        `json:"title"`
	Price       float64       `json:"price"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Image       string        `json:"image"`
	Rating      *model.Rating `json:"rating"`
}

// Run はフィードを1回取得し、全商品をインポートして登録件数を返す。
// テキストフィールドは保存前にサニタイズする。
// 必須フィールドを欠く項目はスキップし、警告ログに記録する。
func (i *Importer) Run(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("フィードリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Storefront/1.0 Catalog Importer")

	resp, err := i.client.Do(req)
	if err != nil {
		i.logger.Error("カタログフィードの取得に失敗しました",
			slog.String("error", err.Error()),
			slog.String("source_url", i.sourceURL),
		)
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		i.logger.Error("カタログフィードがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("source_url", i.sourceURL),
		)
		return 0, fmt.Errorf("カタログフィードがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var items []feedProduct
	if err := json.Unmarshal(body, &items); err != nil {
		i.logger.Error("カタログフィードのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("フィードJSONのパースに失敗しました: %w", err)
	}

	imported := 0
	for idx, item := range items {
		product := i.toProduct(item)
		if product == nil {
			i.logger.Warn("必須フィールドを欠くフィード項目をスキップしました",
				slog.Int("index", idx),
			)
			continue
		}

		if err := i.products.Create(ctx, product); err != nil {
			return imported, fmt.Errorf("商品の登録に失敗しました (index=%d): %w", idx, err)
		}
		imported++
	}

	if i.metrics != nil {
		i.metrics.RecordProductsImported(imported)
	}

	i.logger.Info("カタログフィードのインポートが完了しました",
		slog.Int("imported", imported),
		slog.Int("skipped", len(items)-imported),
	)

	return imported, nil
}

// toProduct はフィード項目をサニタイズ済みの商品に変換する。
// 必須フィールドが欠落または不正な場合はnilを返す。
func (i *Importer) toProduct(item feedProduct) *model.Product {
	title := i.sanitizer.Sanitize(item.Title)
	description := i.sanitizer.Sanitize(item.Description)
	category := i.sanitizer.Sanitize(item.Category)

	if title == "" || description == "" || category == "" || item.Image == "" || item.Price < 0 {
		return nil
	}

	return &model.Product{
		Title:       title,
		Description: description,
		Price:       item.Price,
		Category:    category,
		Image:       item.Image,
		Rating:      item.Rating,
	}
}

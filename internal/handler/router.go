package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storefront/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	TokenValidator    middleware.TokenValidator

	// 計測（nil可）
	HTTPMetrics middleware.HTTPMetrics
	AuthMetrics middleware.AuthMetrics

	// 運用
	HealthChecker HealthChecker

	// サービス
	AuthService    AuthServiceInterface
	CatalogService CatalogServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging →（保護ルートのみ）Auth
//
// カタログの参照系（一覧・詳細）は認証不要、変更系（作成・更新・削除）は
// 認証必須とする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPMetrics))

	authHandler := NewAuthHandler(deps.AuthService)
	productHandler := NewProductHandler(deps.CatalogService)
	requireAuth := middleware.NewAuthMiddleware(deps.TokenValidator, deps.AuthMetrics)

	// --- 認証不要のルート ---

	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	r.Get("/products", productHandler.List)
	r.Get("/products/{id}", productHandler.Show)

	// ヘルスチェック（DB疎通確認）
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSONResponse(w, http.StatusServiceUnavailable, messageResponse{Message: "unhealthy"})
				return
			}
		}
		writeJSONResponse(w, http.StatusOK, messageResponse{Message: "ok"})
	})

	// --- 認証が必要なルート ---

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/logout", authHandler.Logout)
		r.Post("/refresh", authHandler.Refresh)
		r.Get("/me", authHandler.Me)

		// カタログの変更系
		r.Post("/products", productHandler.Create)
		r.Put("/products/{id}", productHandler.Update)
		r.Patch("/products/{id}", productHandler.Update)
		r.Delete("/products/{id}", productHandler.Delete)
	})

	return r
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/wikiswipe/internal/metrics"
	"github.com/hitoshi/wikiswipe/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AccountService AccountServiceInterface
	AuthService    AuthServiceInterface
	AuthConfig     AuthHandlerConfig

	// ユーザー設定
	UserService UserServiceInterface

	// 記事・エンゲージメント
	QueryService      QueryServiceInterface
	EngagementService EngagementServiceInterface

	// メトリクス
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → [Session → RateLimit(General)]
//
// 登録・ログイン・ログアウトとヘルスチェック、メトリクスはセッションミドルウェアの外に配置する。
// いいね・コメントの書き込みにはエンゲージメント専用レート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェアを最上位に適用
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AccountService, deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	articleHandler := NewArticleHandler(deps.QueryService, deps.EngagementService)

	// --- 認証不要のルート ---

	// ヘルスチェック（Dockerのhealthcheckサブコマンドが叩く）
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Prometheusメトリクス
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// 登録・ログインはセッションを持たない状態で呼ばれる。
	// ログアウトは期限切れCookieでも成功させたいため同じく外に置く。
	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/logout", authHandler.Logout)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ユーザー設定
		r.Route("/api/user", func(r chi.Router) {
			r.Get("/", userHandler.GetUser)
			r.Patch("/languages", userHandler.UpdateLanguages)
		})

		// 記事取得とエンゲージメント
		r.Route("/api/articles", func(r chi.Router) {
			r.Get("/", articleHandler.ListArticles)
			r.Get("/trending", articleHandler.ListTrending)
			r.Get("/liked", articleHandler.ListLiked)

			r.Route("/{id}", func(r chi.Router) {
				// 書き込み操作にはエンゲージメント専用レート制限を追加
				r.With(deps.RateLimiter.EngagementMiddleware()).Post("/like", articleHandler.Like)
				r.With(deps.RateLimiter.EngagementMiddleware()).Delete("/like", articleHandler.Unlike)
				r.With(deps.RateLimiter.EngagementMiddleware()).Post("/comments", articleHandler.PostComment)

				r.Get("/comments", articleHandler.ListComments)
			})
		})
	})

	return r
}

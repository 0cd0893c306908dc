package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/wikiswipe/internal/middleware"
	"github.com/hitoshi/wikiswipe/internal/model"
)

// QueryServiceInterface は記事ハンドラーが必要とする読み取りサービスのインターフェース。
type QueryServiceInterface interface {
	// ArticlesForUser はユーザーの言語設定に基づくランダムな記事バッチを返す。
	ArticlesForUser(ctx context.Context, userID string) ([]*model.Article, error)
	// Trending はいいね数上位の記事を返す。
	Trending(ctx context.Context) ([]*model.Article, error)
	// LikedArticles はユーザーがいいねした記事をいいねの新しい順で返す。
	LikedArticles(ctx context.Context, userID string) ([]*model.Article, error)
	// CommentsForArticle は記事のコメントを作成の新しい順で返す。
	CommentsForArticle(ctx context.Context, articleID string) ([]*model.Comment, error)
}

// EngagementServiceInterface は記事ハンドラーが必要とする書き込みサービスのインターフェース。
type EngagementServiceInterface interface {
	// Like は記事にいいねを登録する。
	Like(ctx context.Context, userID, articleID string) (*model.Like, error)
	// Unlike は記事のいいねを解除する（冪等）。
	Unlike(ctx context.Context, userID, articleID string) error
	// Comment は記事にコメントを投稿する。
	Comment(ctx context.Context, userID, articleID, content string) (*model.Comment, error)
}

// ArticleHandler は記事取得とエンゲージメント操作のHTTPハンドラー。
type ArticleHandler struct {
	query      QueryServiceInterface
	engagement EngagementServiceInterface
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(query QueryServiceInterface, engagement EngagementServiceInterface) *ArticleHandler {
	return &ArticleHandler{
		query:      query,
		engagement: engagement,
	}
}

// postCommentRequest はコメント投稿リクエストのボディ。
type postCommentRequest struct {
	Content string `json:"content"`
}

// ListArticles はユーザーの言語設定に基づく記事バッチを返す。
// 言語が未設定の場合は空配列を返す。
// GET /api/articles
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	articles, err := h.query.ArticlesForUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toArticleListResponse(articles))
}

// ListTrending はいいね数上位の記事を返す。
// GET /api/articles/trending
func (h *ArticleHandler) ListTrending(w http.ResponseWriter, r *http.Request) {
	articles, err := h.query.Trending(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toArticleListResponse(articles))
}

// ListLiked はユーザーがいいねした記事をいいねの新しい順で返す。
// GET /api/articles/liked
func (h *ArticleHandler) ListLiked(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	articles, err := h.query.LikedArticles(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toArticleListResponse(articles))
}

// Like は記事にいいねを登録する。
// POST /api/articles/{id}/like
func (h *ArticleHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	articleID := chi.URLParam(r, "id")

	like, err := h.engagement.Like(r.Context(), userID, articleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLikeResponse(like))
}

// Unlike は記事のいいねを解除する。いいねが無い場合も200を返す（冪等）。
// DELETE /api/articles/{id}/like
func (h *ArticleHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	articleID := chi.URLParam(r, "id")

	if err := h.engagement.Unlike(r.Context(), userID, articleID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ListComments は記事のコメントを作成の新しい順で返す。
// GET /api/articles/{id}/comments
func (h *ArticleHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	comments, err := h.query.CommentsForArticle(r.Context(), articleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentListResponse(comments))
}

// PostComment は記事にコメントを投稿する。
// POST /api/articles/{id}/comments
func (h *ArticleHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	articleID := chi.URLParam(r, "id")

	var req postCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	comment, err := h.engagement.Comment(r.Context(), userID, articleID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponse(comment))
}

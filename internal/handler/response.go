package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/wikiswipe/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// userResponse はユーザー情報のAPIレスポンス。
// パスワードハッシュは含めない。
type userResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Languages []string `json:"languages"`
	CreatedAt string   `json:"created_at"`
}

// articleResponse は記事情報のAPIレスポンス。
type articleResponse struct {
	ID        string `json:"id"`
	WikiID    string `json:"wiki_id"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	ImageURL  string `json:"image_url"`
	Language  string `json:"language"`
	LikeCount int    `json:"like_count"`
	CreatedAt string `json:"created_at"`
}

// likeResponse はいいね情報のAPIレスポンス。
type likeResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ArticleID string `json:"article_id"`
	CreatedAt string `json:"created_at"`
}

// commentResponse はコメント情報のAPIレスポンス。
type commentResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ArticleID string `json:"article_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	languages := user.Languages
	if languages == nil {
		languages = []string{}
	}
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Languages: languages,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// toArticleResponse はmodel.ArticleからAPIレスポンスに変換する。
func toArticleResponse(article *model.Article) articleResponse {
	return articleResponse{
		ID:        article.ID,
		WikiID:    article.WikiID,
		Title:     article.Title,
		Excerpt:   article.Excerpt,
		ImageURL:  article.ImageURL,
		Language:  article.Language,
		LikeCount: article.LikeCount,
		CreatedAt: article.CreatedAt.Format(time.RFC3339),
	}
}

// toArticleListResponse は記事スライスをAPIレスポンスに変換する。
// 空の場合もJSONでnullではなく[]を返す。
func toArticleListResponse(articles []*model.Article) []articleResponse {
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleResponse(a))
	}
	return out
}

// toLikeResponse はmodel.LikeからAPIレスポンスに変換する。
func toLikeResponse(like *model.Like) likeResponse {
	return likeResponse{
		ID:        like.ID,
		UserID:    like.UserID,
		ArticleID: like.ArticleID,
		CreatedAt: like.CreatedAt.Format(time.RFC3339),
	}
}

// toCommentResponse はmodel.CommentからAPIレスポンスに変換する。
func toCommentResponse(comment *model.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		ArticleID: comment.ArticleID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
}

// toCommentListResponse はコメントスライスをAPIレスポンスに変換する。
func toCommentListResponse(comments []*model.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	return out
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUsernameTaken,
		model.ErrCodeDuplicateLike,
		model.ErrCodeEmptyContent,
		model.ErrCodeInvalidLanguage,
		model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeArticleNotFound,
		model.ErrCodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

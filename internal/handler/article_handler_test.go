package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/wikiswipe/internal/model"
)

// --- モック定義 ---

type mockQueryService struct {
	articlesForUserFn    func(ctx context.Context, userID string) ([]*model.Article, error)
	trendingFn           func(ctx context.Context) ([]*model.Article, error)
	likedArticlesFn      func(ctx context.Context, userID string) ([]*model.Article, error)
	commentsForArticleFn func(ctx context.Context, articleID string) ([]*model.Comment, error)
}

func (m *mockQueryService) ArticlesForUser(ctx context.Context, userID string) ([]*model.Article, error) {
	if m.articlesForUserFn != nil {
		return m.articlesForUserFn(ctx, userID)
	}
	return []*model.Article{}, nil
}

func (m *mockQueryService) Trending(ctx context.Context) ([]*model.Article, error) {
	if m.trendingFn != nil {
		return m.trendingFn(ctx)
	}
	return []*model.Article{}, nil
}

func (m *mockQueryService) LikedArticles(ctx context.Context, userID string) ([]*model.Article, error) {
	if m.likedArticlesFn != nil {
		return m.likedArticlesFn(ctx, userID)
	}
	return []*model.Article{}, nil
}

func (m *mockQueryService) CommentsForArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	if m.commentsForArticleFn != nil {
		return m.commentsForArticleFn(ctx, articleID)
	}
	return []*model.Comment{}, nil
}

type mockEngagementService struct {
	likeFn    func(ctx context.Context, userID, articleID string) (*model.Like, error)
	unlikeFn  func(ctx context.Context, userID, articleID string) error
	commentFn func(ctx context.Context, userID, articleID, content string) (*model.Comment, error)
}

func (m *mockEngagementService) Like(ctx context.Context, userID, articleID string) (*model.Like, error) {
	if m.likeFn != nil {
		return m.likeFn(ctx, userID, articleID)
	}
	return nil, nil
}

func (m *mockEngagementService) Unlike(ctx context.Context, userID, articleID string) error {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, userID, articleID)
	}
	return nil
}

func (m *mockEngagementService) Comment(ctx context.Context, userID, articleID, content string) (*model.Comment, error) {
	if m.commentFn != nil {
		return m.commentFn(ctx, userID, articleID, content)
	}
	return nil, nil
}

func testArticle(id string, likeCount int) *model.Article {
	return &model.Article{
		ID:        id,
		WikiID:    "en:100",
		Title:     "Go (programming language)",
		Excerpt:   "Go is a statically typed language.",
		ImageURL:  "https://upload.wikimedia.org/go.png",
		Language:  "en",
		LikeCount: likeCount,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// newArticleTestRouter はURLパラメータを解決するためchi.Routerにハンドラーをマウントする。
func newArticleTestRouter(query QueryServiceInterface, engagement EngagementServiceInterface) http.Handler {
	h := NewArticleHandler(query, engagement)

	r := chi.NewRouter()
	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/", h.ListArticles)
		r.Get("/trending", h.ListTrending)
		r.Get("/liked", h.ListLiked)
		r.Route("/{id}", func(r chi.Router) {
			r.Post("/like", h.Like)
			r.Delete("/like", h.Unlike)
			r.Get("/comments", h.ListComments)
			r.Post("/comments", h.PostComment)
		})
	})
	return r
}

// --- テスト ---

func TestArticleHandler_ListArticles_ReturnsBatch(t *testing.T) {
	query := &mockQueryService{
		articlesForUserFn: func(ctx context.Context, userID string) ([]*model.Article, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			return []*model.Article{testArticle("a1", 3), testArticle("a2", 0)}, nil
		},
	}
	router := newArticleTestRouter(query, &mockEngagementService{})

	req := authedRequest(http.MethodGet, "/api/articles", "", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body []articleResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body) != 2 {
		t.Fatalf("articles = %d, want 2", len(body))
	}
	if body[0].ID != "a1" || body[0].LikeCount != 3 {
		t.Errorf("first article = %+v", body[0])
	}
}

func TestArticleHandler_ListArticles_EmptyLanguages_ReturnsEmptyArray(t *testing.T) {
	query := &mockQueryService{
		articlesForUserFn: func(ctx context.Context, userID string) ([]*model.Article, error) {
			return []*model.Article{}, nil
		},
	}
	router := newArticleTestRouter(query, &mockEngagementService{})

	req := authedRequest(http.MethodGet, "/api/articles", "", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// JSONのnullではなく空配列を返す
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestArticleHandler_ListTrending_ReturnsRanking(t *testing.T) {
	query := &mockQueryService{
		trendingFn: func(ctx context.Context) ([]*model.Article, error) {
			return []*model.Article{testArticle("top", 10), testArticle("second", 5)}, nil
		},
	}
	router := newArticleTestRouter(query, &mockEngagementService{})

	req := authedRequest(http.MethodGet, "/api/articles/trending", "", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	var body []articleResponse
	json.NewDecoder(w.Result().Body).Decode(&body)
	if len(body) != 2 || body[0].ID != "top" {
		t.Errorf("trending = %+v, want top first", body)
	}
}

func TestArticleHandler_Like_Success(t *testing.T) {
	engagement := &mockEngagementService{
		likeFn: func(ctx context.Context, userID, articleID string) (*model.Like, error) {
			if articleID != "a1" {
				t.Errorf("articleID = %q, want a1", articleID)
			}
			return &model.Like{
				ID:        "like-1",
				UserID:    userID,
				ArticleID: articleID,
				CreatedAt: time.Now(),
			}, nil
		},
	}
	router := newArticleTestRouter(&mockQueryService{}, engagement)

	req := authedRequest(http.MethodPost, "/api/articles/a1/like", "", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body likeResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.ArticleID != "a1" {
		t.Errorf("article_id = %q, want a1", body.ArticleID)
	}
}

func TestArticleHandler_Like_Duplicate_Returns400(t *testing.T) {
	engagement := &mockEngagementService{
		likeFn: func(ctx context.Context, userID, articleID string) (*model.Like, error) {
			return nil, model.NewDuplicateLikeError(articleID)
		},
	}
	router := newArticleTestRouter(&mockQueryService{}, engagement)

	req := authedRequest(http.MethodPost, "/api/articles/a1/like", "", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var body apiErrorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Code != "DUPLICATE_LIKE" {
		t.Errorf("code = %q, want DUPLICATE_LIKE", body.Code)
	}
}

func TestArticleHandler_Like_ArticleNotFound_Returns404(t *testing.T) {
	engagement := &mockEngagementService{
		likeFn: func(ctx context.Context, userID, articleID string) (*model.Like, error) {
			return nil, model.NewArticleNotFoundError(articleID)
		},
	}
	router := newArticleTestRouter(&mockQueryService{}, engagement)

	req := authedRequest(http.MethodPost, "/api/articles/missing/like", "", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestArticleHandler_Unlike_Idempotent_Returns200(t *testing.T) {
	var calls int
	engagement := &mockEngagementService{
		unlikeFn: func(ctx context.Context, userID, articleID string) error {
			calls++
			return nil
		},
	}
	router := newArticleTestRouter(&mockQueryService{}, engagement)

	for i := 0; i < 2; i++ {
		req := authedRequest(http.MethodDelete, "/api/articles/a1/like", "", "user-1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}
	}
	if calls != 2 {
		t.Errorf("unlike calls = %d, want 2", calls)
	}
}

func TestArticleHandler_PostComment_Success(t *testing.T) {
	engagement := &mockEngagementService{
		commentFn: func(ctx context.Context, userID, articleID, content string) (*model.Comment, error) {
			if content != "面白い記事でした" {
				t.Errorf("content = %q", content)
			}
			return &model.Comment{
				ID:        "comment-1",
				UserID:    userID,
				ArticleID: articleID,
				Content:   content,
				CreatedAt: time.Now(),
			}, nil
		},
	}
	router := newArticleTestRouter(&mockQueryService{}, engagement)

	req := authedRequest(http.MethodPost, "/api/articles/a1/comments",
		`{"content":"面白い記事でした"}`, "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body commentResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Content != "面白い記事でした" {
		t.Errorf("content = %q", body.Content)
	}
}

func TestArticleHandler_PostComment_EmptyContent_Returns400(t *testing.T) {
	engagement := &mockEngagementService{
		commentFn: func(ctx context.Context, userID, articleID, content string) (*model.Comment, error) {
			return nil, model.NewEmptyContentError()
		},
	}
	router := newArticleTestRouter(&mockQueryService{}, engagement)

	req := authedRequest(http.MethodPost, "/api/articles/a1/comments", `{"content":"   "}`, "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var body apiErrorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Code != "EMPTY_CONTENT" {
		t.Errorf("code = %q, want EMPTY_CONTENT", body.Code)
	}
}

func TestArticleHandler_ListComments_NewestFirst(t *testing.T) {
	now := time.Now()
	query := &mockQueryService{
		commentsForArticleFn: func(ctx context.Context, articleID string) ([]*model.Comment, error) {
			return []*model.Comment{
				{ID: "c2", ArticleID: articleID, Content: "後のコメント", CreatedAt: now},
				{ID: "c1", ArticleID: articleID, Content: "先のコメント", CreatedAt: now.Add(-time.Minute)},
			}, nil
		},
	}
	router := newArticleTestRouter(query, &mockEngagementService{})

	req := authedRequest(http.MethodGet, "/api/articles/a1/comments", "", "user-1")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	var body []commentResponse
	json.NewDecoder(w.Result().Body).Decode(&body)
	if len(body) != 2 || body[0].ID != "c2" {
		t.Errorf("comments = %+v, want c2 first", body)
	}
}

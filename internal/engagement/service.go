// Package engagement はいいね・コメントのドメインロジックを提供する。
package engagement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/wikiswipe/internal/metrics"
	"github.com/hitoshi/wikiswipe/internal/model"
	"github.com/hitoshi/wikiswipe/internal/repository"
)

// ArticlePool は記事プール操作のインターフェース。
// テスタビリティのためpool.Serviceを抽象化する。
type ArticlePool interface {
	FindByID(ctx context.Context, id string) (*model.Article, error)
	ByIDs(ctx context.Context, ids []string) ([]*model.Article, error)
	AdjustLikeCount(ctx context.Context, articleID string, delta int) error
}

// Sanitizer はコメント本文サニタイズのインターフェース。
type Sanitizer interface {
	SanitizeText(raw string) string
}

// Service はいいね・コメントのサービス層。
// いいねの登録・解除は単一のミューテックスで直列化し、
// 重複チェックとカウンタ増減の間に競合が入らないようにする。
type Service struct {
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository
	pool        ArticlePool
	sanitizer   Sanitizer
	logger      *slog.Logger
	metrics     metrics.MetricsCollector

	// likeMu はいいね関連の変更操作（Like/Unlike）を直列化する
	likeMu sync.Mutex
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	likeRepo repository.LikeRepository,
	commentRepo repository.CommentRepository,
	pool ArticlePool,
	sanitizer Sanitizer,
	logger *slog.Logger,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		pool:        pool,
		sanitizer:   sanitizer,
		logger:      logger,
		metrics:     collector,
	}
}

// Like は記事にいいねを登録し、記事のいいねカウンタを加算する。
// 同一（ユーザー, 記事）ペアへの二重いいねはDuplicateLikeエラーを返す。
// 記事が存在しない場合はArticleNotFoundエラーを返す。
func (s *Service) Like(ctx context.Context, userID, articleID string) (*model.Like, error) {
	s.likeMu.Lock()
	defer s.likeMu.Unlock()

	article, err := s.pool.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("記事の確認に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	existing, err := s.likeRepo.FindByUserAndArticle(ctx, userID, articleID)
	if err != nil {
		return nil, fmt.Errorf("いいねの確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateLikeError(articleID)
	}

	like := &model.Like{
		ID:        uuid.New().String(),
		UserID:    userID,
		ArticleID: articleID,
		CreatedAt: time.Now(),
	}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		return nil, fmt.Errorf("いいねの保存に失敗しました: %w", err)
	}

	if err := s.pool.AdjustLikeCount(ctx, articleID, 1); err != nil {
		return nil, err
	}

	s.metrics.RecordLike()
	s.logger.Info("いいねを登録しました",
		slog.String("user_id", userID),
		slog.String("article_id", articleID),
	)
	return like, nil
}

// Unlike は記事のいいねを解除し、記事のいいねカウンタを減算する。
// いいねが存在しない場合は何もしない（冪等）。
func (s *Service) Unlike(ctx context.Context, userID, articleID string) error {
	s.likeMu.Lock()
	defer s.likeMu.Unlock()

	existing, err := s.likeRepo.FindByUserAndArticle(ctx, userID, articleID)
	if err != nil {
		return fmt.Errorf("いいねの確認に失敗しました: %w", err)
	}
	if existing == nil {
		return nil
	}

	if err := s.likeRepo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("いいねの削除に失敗しました: %w", err)
	}

	if err := s.pool.AdjustLikeCount(ctx, articleID, -1); err != nil {
		return err
	}

	s.metrics.RecordUnlike()
	s.logger.Info("いいねを解除しました",
		slog.String("user_id", userID),
		slog.String("article_id", articleID),
	)
	return nil
}

// ListLikedArticles はユーザーがいいねした記事を、いいねの新しい順で返す。
// プールに存在しない記事IDは読み飛ばされる。
func (s *Service) ListLikedArticles(ctx context.Context, userID string) ([]*model.Article, error) {
	likes, err := s.likeRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("いいね一覧の取得に失敗しました: %w", err)
	}

	ids := make([]string, 0, len(likes))
	for _, like := range likes {
		ids = append(ids, like.ArticleID)
	}

	articles, err := s.pool.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// Comment は記事にコメントを投稿する。
// 本文はHTML除去と前後空白のトリムを行った上で保存する。
// サニタイズ後に空になる本文はEmptyContentエラーを返す。
// 記事が存在しない場合はArticleNotFoundエラーを返す。
func (s *Service) Comment(ctx context.Context, userID, articleID, content string) (*model.Comment, error) {
	sanitized := s.sanitizer.SanitizeText(content)
	if strings.TrimSpace(sanitized) == "" {
		return nil, model.NewEmptyContentError()
	}

	article, err := s.pool.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("記事の確認に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		ArticleID: articleID,
		Content:   sanitized,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("コメントの保存に失敗しました: %w", err)
	}

	s.metrics.RecordComment()
	s.logger.Info("コメントを投稿しました",
		slog.String("user_id", userID),
		slog.String("article_id", articleID),
	)
	return comment, nil
}

// ListComments は記事のコメントを作成の新しい順で返す。
// 記事が存在しない場合はArticleNotFoundエラーを返す。
func (s *Service) ListComments(ctx context.Context, articleID string) ([]*model.Comment, error) {
	article, err := s.pool.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("記事の確認に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	comments, err := s.commentRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	return comments, nil
}

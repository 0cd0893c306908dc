// Package query はユーザー向けの記事取得クエリを提供する。
// プールとエンゲージメント台帳を組み合わせた読み取り専用の層。
package query

import (
	"context"
	"fmt"

	"github.com/hitoshi/wikiswipe/internal/model"
	"github.com/hitoshi/wikiswipe/internal/repository"
)

// ArticleSampler は記事プールの読み取りインターフェース。
type ArticleSampler interface {
	Sample(ctx context.Context, languages []string, count int) ([]*model.Article, error)
	Trending(ctx context.Context, count int) ([]*model.Article, error)
}

// EngagementReader はエンゲージメント台帳の読み取りインターフェース。
type EngagementReader interface {
	ListLikedArticles(ctx context.Context, userID string) ([]*model.Article, error)
	ListComments(ctx context.Context, articleID string) ([]*model.Comment, error)
}

// Service は記事取得クエリのサービス層。
type Service struct {
	userRepo     repository.UserRepository
	sampler      ArticleSampler
	engagement   EngagementReader
	sampleSize   int
	trendingSize int
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sampler ArticleSampler,
	engagement EngagementReader,
	sampleSize int,
	trendingSize int,
) *Service {
	return &Service{
		userRepo:     userRepo,
		sampler:      sampler,
		engagement:   engagement,
		sampleSize:   sampleSize,
		trendingSize: trendingSize,
	}
}

// ArticlesForUser はユーザーの言語設定に基づくランダムな記事バッチを返す。
// 言語が未設定の場合は上流取得を行わず空スライスを返す。
func (s *Service) ArticlesForUser(ctx context.Context, userID string) ([]*model.Article, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	if len(user.Languages) == 0 {
		return []*model.Article{}, nil
	}

	return s.sampler.Sample(ctx, user.Languages, s.sampleSize)
}

// Trending はいいね数上位の記事を返す。
func (s *Service) Trending(ctx context.Context) ([]*model.Article, error) {
	return s.sampler.Trending(ctx, s.trendingSize)
}

// LikedArticles はユーザーがいいねした記事をいいねの新しい順で返す。
func (s *Service) LikedArticles(ctx context.Context, userID string) ([]*model.Article, error) {
	return s.engagement.ListLikedArticles(ctx, userID)
}

// CommentsForArticle は記事のコメントを作成の新しい順で返す。
func (s *Service) CommentsForArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	return s.engagement.ListComments(ctx, articleID)
}

// Package pool は記事プールの管理を提供する。
// Wikipediaから取得した記事候補の補充、ランダムサンプリング、
// トレンディングランキングを担当する。
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"golang.org/x/sync/singleflight"

	"github.com/hitoshi/wikiswipe/internal/metrics"
	"github.com/hitoshi/wikiswipe/internal/model"
	"github.com/hitoshi/wikiswipe/internal/repository"
)

// Fetcher はWikipedia記事取得のインターフェース。
// テスタビリティのためwikipedia.Clientを抽象化する。
type Fetcher interface {
	FetchBatch(ctx context.Context, lang string) ([]model.CandidateArticle, error)
}

// Service は記事プールのサービス層。
// 言語ごとの在庫補充はsingleflightで集約し、同一言語への同時補充要求が
// 上流への重複リクエストにならないようにする。補充中はプールのロックを
// 保持しない（取得はリポジトリ操作の外側で行う）。
type Service struct {
	articleRepo repository.ArticleRepository
	fetcher     Fetcher
	logger      *slog.Logger
	metrics     metrics.MetricsCollector
	minStock    int
	group       singleflight.Group
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	articleRepo repository.ArticleRepository,
	fetcher Fetcher,
	logger *slog.Logger,
	collector metrics.MetricsCollector,
	minStock int,
) *Service {
	return &Service{
		articleRepo: articleRepo,
		fetcher:     fetcher,
		logger:      logger,
		metrics:     collector,
		minStock:    minStock,
	}
}

// EnsureStock は指定言語の在庫が下限を下回っている場合に補充する。
// 同一言語への同時呼び出しは1回の取得に集約される。
// WikiIDによる重複排除があるため、競合しても同一記事が二重登録されることはない。
func (s *Service) EnsureStock(ctx context.Context, lang string) error {
	count, err := s.articleRepo.CountByLanguage(ctx, lang)
	if err != nil {
		return fmt.Errorf("在庫数の確認に失敗しました: %w", err)
	}
	if count >= s.minStock {
		return nil
	}

	_, err, _ = s.group.Do(lang, func() (interface{}, error) {
		candidates, err := s.fetcher.FetchBatch(ctx, lang)
		if err != nil {
			return nil, err
		}

		inserted := 0
		for _, candidate := range candidates {
			_, ok, err := s.articleRepo.Insert(ctx, candidate)
			if err != nil {
				return nil, fmt.Errorf("記事の挿入に失敗しました: %w", err)
			}
			if ok {
				inserted++
			}
		}

		s.metrics.RecordArticlesInserted(inserted)
		s.logger.Info("記事プールを補充しました",
			slog.String("language", lang),
			slog.Int("candidates", len(candidates)),
			slog.Int("inserted", inserted),
		)
		return nil, nil
	})
	if err != nil {
		s.logger.Warn("記事プールの補充に失敗しました",
			slog.String("language", lang),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// Sample は言語集合に含まれる記事から一様ランダムに最大count件を返す。
// 各言語の在庫補充を先に試みるが、補充失敗時は既存プールで継続する
// （上流障害がユーザー向けAPIのエラーにならないようにする）。
// 返されるスライスに重複はなく、指定外の言語の記事は含まれない。
func (s *Service) Sample(ctx context.Context, languages []string, count int) ([]*model.Article, error) {
	if len(languages) == 0 {
		return []*model.Article{}, nil
	}

	for _, lang := range languages {
		// 補充失敗はログ済みなのでここでは無視して継続する
		_ = s.EnsureStock(ctx, lang)
	}

	articles, err := s.articleRepo.ListByLanguages(ctx, languages)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}

	// 元のスライスを変更しないようコピーをシャッフルする
	shuffled := make([]*model.Article, len(articles))
	copy(shuffled, articles)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) > count {
		shuffled = shuffled[:count]
	}
	return shuffled, nil
}

// Trending はいいね数降順の上位count件を返す。
// 同数の記事は挿入順を維持する。
func (s *Service) Trending(ctx context.Context, count int) ([]*model.Article, error) {
	articles, err := s.articleRepo.ListTrending(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("トレンディング記事の取得に失敗しました: %w", err)
	}
	return articles, nil
}

// ByIDs はIDリストに対応する記事を返す。存在しないIDは読み飛ばす。
func (s *Service) ByIDs(ctx context.Context, ids []string) ([]*model.Article, error) {
	articles, err := s.articleRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	return articles, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (s *Service) FindByID(ctx context.Context, id string) (*model.Article, error) {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	return article, nil
}

// AdjustLikeCount は記事のいいねカウンタをdeltaだけ増減する。
func (s *Service) AdjustLikeCount(ctx context.Context, articleID string, delta int) error {
	if err := s.articleRepo.AdjustLikeCount(ctx, articleID, delta); err != nil {
		return fmt.Errorf("いいねカウンタの更新に失敗しました: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/wikiswipe/internal/model"
)

// memoryArticleRepo はArticleRepositoryのインメモリ実装。
// orderは挿入順のIDリストで、トレンドの同数タイブレークと
// 言語別一覧の決定的な並びに使用する。
type memoryArticleRepo struct {
	mu       sync.RWMutex
	articles map[string]*model.Article // key: article ID
	byWikiID map[string]string         // key: WikiID, value: article ID
	order    []string
}

// NewMemoryArticleRepo はmemoryArticleRepoの新しいインスタンスを生成する。
func NewMemoryArticleRepo() *memoryArticleRepo {
	return &memoryArticleRepo{
		articles: make(map[string]*model.Article),
		byWikiID: make(map[string]string),
	}
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *memoryArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

// Insert は候補記事をIDを採番して挿入する。
// 同一WikiIDの記事が既に存在する場合は挿入せずfalseを返す。
// ID採番をここに集約することで、取得側（Wikipediaクライアント）は
// 採番に関与しない。
func (r *memoryArticleRepo) Insert(ctx context.Context, candidate model.CandidateArticle) (*model.Article, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byWikiID[candidate.WikiID]; exists {
		return nil, false, nil
	}

	a := &model.Article{
		ID:        uuid.New().String(),
		WikiID:    candidate.WikiID,
		Title:     candidate.Title,
		Excerpt:   candidate.Excerpt,
		ImageURL:  candidate.ImageURL,
		Language:  candidate.Language,
		LikeCount: 0,
		CreatedAt: time.Now(),
	}

	r.articles[a.ID] = a
	r.byWikiID[a.WikiID] = a.ID
	r.order = append(r.order, a.ID)

	c := *a
	return &c, true, nil
}

// CountByLanguage は指定言語の記事数を返す。
// 言語別の件数はフルスキャンで数える。このスケールでは十分であり、
// 記事数が増えた場合は言語別インデックスを持たせる。
func (r *memoryArticleRepo) CountByLanguage(ctx context.Context, language string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, a := range r.articles {
		if a.Language == language {
			count++
		}
	}
	return count, nil
}

// ListByLanguages は言語集合に含まれる記事を挿入順で返す。
func (r *memoryArticleRepo) ListByLanguages(ctx context.Context, languages []string) ([]*model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Article, 0)
	for _, id := range r.order {
		a := r.articles[id]
		if slices.Contains(languages, a.Language) {
			c := *a
			result = append(result, &c)
		}
	}
	return result, nil
}

// ListTrending はいいね数降順の上位count件を返す。
// 安定ソートにより同数の記事は挿入順を維持する。
func (r *memoryArticleRepo) ListTrending(ctx context.Context, count int) ([]*model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*model.Article, 0, len(r.order))
	for _, id := range r.order {
		c := *r.articles[id]
		all = append(all, &c)
	}

	slices.SortStableFunc(all, func(a, b *model.Article) int {
		return b.LikeCount - a.LikeCount
	})

	if count >= 0 && len(all) > count {
		all = all[:count]
	}
	return all, nil
}

// ListByIDs はIDリストに対応する記事を返す。存在しないIDは読み飛ばす。
func (r *memoryArticleRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.articles[id]; ok {
			c := *a
			result = append(result, &c)
		}
	}
	return result, nil
}

// AdjustLikeCount はいいねカウンタをdeltaだけ増減する。0未満にはならない。
func (r *memoryArticleRepo) AdjustLikeCount(ctx context.Context, articleID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[articleID]
	if !ok {
		return nil
	}

	a.LikeCount += delta
	if a.LikeCount < 0 {
		a.LikeCount = 0
	}
	return nil
}

package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/hitoshi/wikiswipe/internal/model"
)

// memoryLikeRepo はLikeRepositoryのインメモリ実装。
// seqは作成順の通し番号で、同時刻に作成されたいいねの
// 「新しい順」を決定的にするために保持する。
type memoryLikeRepo struct {
	mu      sync.RWMutex
	likes   map[string]*model.Like // key: like ID
	seq     map[string]uint64      // key: like ID, value: 作成通し番号
	nextSeq uint64
}

// NewMemoryLikeRepo はmemoryLikeRepoの新しいインスタンスを生成する。
func NewMemoryLikeRepo() *memoryLikeRepo {
	return &memoryLikeRepo{
		likes: make(map[string]*model.Like),
		seq:   make(map[string]uint64),
	}
}

// Create はいいねを作成しIDを採番する。
func (r *memoryLikeRepo) Create(ctx context.Context, like *model.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	like.ID = uuid.New().String()
	c := *like
	r.likes[like.ID] = &c
	r.seq[like.ID] = r.nextSeq
	r.nextSeq++
	return nil
}

// FindByUserAndArticle は（ユーザー, 記事）ペアのいいねを検索する。
func (r *memoryLikeRepo) FindByUserAndArticle(ctx context.Context, userID, articleID string) (*model.Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.likes {
		if l.UserID == userID && l.ArticleID == articleID {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

// Delete は指定IDのいいねを削除する。
func (r *memoryLikeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.likes, id)
	delete(r.seq, id)
	return nil
}

// ListByUser はユーザーのいいねを作成の新しい順で返す。
func (r *memoryLikeRepo) ListByUser(ctx context.Context, userID string) ([]*model.Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Like, 0)
	for _, l := range r.likes {
		if l.UserID == userID {
			c := *l
			result = append(result, &c)
		}
	}

	slices.SortFunc(result, func(a, b *model.Like) int {
		// 新しい順（通し番号の降順）
		if r.seq[a.ID] > r.seq[b.ID] {
			return -1
		}
		return 1
	})
	return result, nil
}

// CountByArticle は記事のいいね数を返す。
func (r *memoryLikeRepo) CountByArticle(ctx context.Context, articleID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, l := range r.likes {
		if l.ArticleID == articleID {
			count++
		}
	}
	return count, nil
}

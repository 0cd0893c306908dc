package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/hitoshi/wikiswipe/internal/model"
)

// memoryCommentRepo はCommentRepositoryのインメモリ実装。
type memoryCommentRepo struct {
	mu        sync.RWMutex
	byArticle map[string][]*model.Comment // key: article ID, 挿入順
}

// NewMemoryCommentRepo はmemoryCommentRepoの新しいインスタンスを生成する。
func NewMemoryCommentRepo() *memoryCommentRepo {
	return &memoryCommentRepo{
		byArticle: make(map[string][]*model.Comment),
	}
}

// Create はコメントを作成しIDを採番する。
func (r *memoryCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment.ID = uuid.New().String()
	c := *comment
	r.byArticle[comment.ArticleID] = append(r.byArticle[comment.ArticleID], &c)
	return nil
}

// ListByArticle は記事のコメントを作成の新しい順で返す。
// 同時刻のコメントは挿入の逆順になる。
func (r *memoryCommentRepo) ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byArticle[articleID]
	result := make([]*model.Comment, 0, len(stored))
	for _, c := range stored {
		cc := *c
		result = append(result, &cc)
	}
	slices.Reverse(result)
	return result, nil
}

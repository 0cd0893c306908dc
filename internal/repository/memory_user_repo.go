package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/wikiswipe/internal/model"
)

// memoryUserRepo はUserRepositoryのインメモリ実装。
// ユーザー名の一意性はCreate内の検索と同一ロックで担保する。
type memoryUserRepo struct {
	mu         sync.RWMutex
	users      map[string]*model.User // key: user ID
	byUsername map[string]string      // key: username, value: user ID
}

// NewMemoryUserRepo はmemoryUserRepoの新しいインスタンスを生成する。
func NewMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:      make(map[string]*model.User),
		byUsername: make(map[string]string),
	}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *memoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
func (r *memoryUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	return cloneUser(r.users[id]), nil
}

// Create はユーザーを作成しIDを採番する。
// ユーザー名が既に存在する場合はUsernameTakenエラーを返す。
func (r *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return model.NewUsernameTakenError(user.Username)
	}

	now := time.Now()
	user.ID = uuid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Languages == nil {
		user.Languages = []string{}
	}

	r.users[user.ID] = cloneUser(user)
	r.byUsername[user.Username] = user.ID
	return nil
}

// UpdateLanguages は言語設定を丸ごと置き換える。
func (r *memoryUserRepo) UpdateLanguages(ctx context.Context, userID string, languages []string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, nil
	}

	u.Languages = append([]string{}, languages...)
	u.UpdatedAt = time.Now()
	return cloneUser(u), nil
}

// cloneUser は呼び出し元とストアの間でスライスを共有しないようコピーを返す。
func cloneUser(u *model.User) *model.User {
	c := *u
	c.Languages = append([]string{}, u.Languages...)
	return &c
}

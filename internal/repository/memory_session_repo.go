package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/wikiswipe/internal/model"
)

// memorySessionRepo はSessionRepositoryのインメモリ実装。
// 期限切れセッションはFindByID時に即座に無効扱いとなり、
// バックグラウンドのジャニターが定期的にメモリから掃き出す。
type memorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemorySessionRepo はmemorySessionRepoの新しいインスタンスを生成し、
// 期限切れエントリのクリーンアップをバックグラウンドで開始する。
func NewMemorySessionRepo(cleanupInterval time.Duration) *memorySessionRepo {
	r := &memorySessionRepo{
		sessions: make(map[string]*model.Session),
		stopCh:   make(chan struct{}),
	}

	go r.cleanupLoop(cleanupInterval)

	return r
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (r *memorySessionRepo) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Create はセッションを作成する。
func (r *memorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *session
	r.sessions[session.ID] = &c
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *memorySessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	if time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	c := *s
	return &c, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *memorySessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (r *memorySessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

// cleanupLoop はバックグラウンドで期限切れセッションを定期的に削除する。
func (r *memorySessionRepo) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stopCh:
			return
		}
	}
}

// cleanup は期限切れセッションをメモリから削除する。
func (r *memorySessionRepo) cleanup() {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, id)
		}
	}
}

// Package repository はデータストアのインターフェースとインメモリ実装を定義する。
// 本アプリケーションの状態はすべてプロセスローカルなメモリ上に保持する
// （再起動をまたぐ永続性はスコープ外）。インターフェースを介して注入するため、
// 将来SQL実装へ差し替える場合もサービス層は変更不要。
package repository

import (
	"context"

	"github.com/hitoshi/wikiswipe/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成しIDを採番する。
	// ユーザー名が既に存在する場合はUsernameTakenエラーを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateLanguages は言語設定を丸ごと置き換える（マージしない）。
	// 更新後のユーザーを返す。見つからない場合はnilを返す。
	UpdateLanguages(ctx context.Context, userID string, languages []string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ArticleRepository は記事プールの永続化インターフェース。
// 記事は作成されるのみで削除されない。挿入順序を保持する。
type ArticleRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// Insert は候補記事をIDを採番して挿入する。
	// 同一WikiIDの記事が既に存在する場合は挿入せずfalseを返す（冪等な補充）。
	Insert(ctx context.Context, candidate model.CandidateArticle) (*model.Article, bool, error)

	// CountByLanguage は指定言語の記事数を返す。
	CountByLanguage(ctx context.Context, language string) (int, error)

	// ListByLanguages は言語集合に含まれる記事を挿入順で返す。
	ListByLanguages(ctx context.Context, languages []string) ([]*model.Article, error)

	// ListTrending はいいね数降順の上位count件を返す。
	// 同数の場合は挿入順を維持する（安定ソート）。
	ListTrending(ctx context.Context, count int) ([]*model.Article, error)

	// ListByIDs はIDリストに対応する記事を返す。存在しないIDは読み飛ばす。
	ListByIDs(ctx context.Context, ids []string) ([]*model.Article, error)

	// AdjustLikeCount はいいねカウンタをdeltaだけ増減する。
	// カウンタは0未満にはならない（クランプ）。記事が存在しない場合は何もしない。
	AdjustLikeCount(ctx context.Context, articleID string, delta int) error
}

// LikeRepository はいいねデータの永続化インターフェース。
type LikeRepository interface {
	// Create はいいねを作成しIDを採番する。
	Create(ctx context.Context, like *model.Like) error

	// FindByUserAndArticle は（ユーザー, 記事）ペアのいいねを検索する。
	// 見つからない場合はnilを返す。
	FindByUserAndArticle(ctx context.Context, userID, articleID string) (*model.Like, error)

	// Delete は指定IDのいいねを削除する。
	Delete(ctx context.Context, id string) error

	// ListByUser はユーザーのいいねを作成の新しい順で返す。
	ListByUser(ctx context.Context, userID string) ([]*model.Like, error)

	// CountByArticle は記事のいいね数を返す。
	CountByArticle(ctx context.Context, articleID string) (int, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// Create はコメントを作成しIDを採番する。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByArticle は記事のコメントを作成の新しい順で返す。
	ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error)
}

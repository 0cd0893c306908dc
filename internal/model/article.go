// Package model はドメインモデルを定義する。
package model

import "time"

// Article はWikipediaから取得した記事サマリーのキャッシュを表す。
// WikiIDは取得元のページIDであり、プール内で一意（重複排除キー）。
// LikeCountはエンゲージメント台帳の操作によってのみ増減する非負カウンタ。
type Article struct {
	ID        string
	WikiID    string
	Title     string
	Excerpt   string
	ImageURL  string
	Language  string
	LikeCount int
	CreatedAt time.Time
}

// CandidateArticle はWikipedia APIから取得した未保存の記事候補を表す。
// プールへの挿入時にIDが採番されるため、ここではIDを持たない。
type CandidateArticle struct {
	WikiID   string
	Title    string
	Excerpt  string
	ImageURL string
	Language string
}

// Like はユーザーと記事のいいね関係を表す。
// 同一（ユーザー, 記事）ペアに対して高々1件しか存在しない。
type Like struct {
	ID        string
	UserID    string
	ArticleID string
	CreatedAt time.Time
}

// Comment は記事へのコメントを表す。作成後は変更・削除されない。
type Comment struct {
	ID        string
	UserID    string
	ArticleID string
	Content   string
	CreatedAt time.Time
}

// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, engagement, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUsernameTaken   = "USERNAME_TAKEN"
	ErrCodeDuplicateLike   = "DUPLICATE_LIKE"
	ErrCodeEmptyContent    = "EMPTY_CONTENT"
	ErrCodeArticleNotFound = "ARTICLE_NOT_FOUND"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeInvalidLanguage = "INVALID_LANGUAGE"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
)

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("このユーザー名は既に使用されています: %s", username),
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewDuplicateLikeError はいいね重複エラーを生成する。
// 同一（ユーザー, 記事）ペアへの2回目のいいねを拒否することで、
// 「いいね数 == 有効なLikeレコード数」の不変条件を維持する。
func NewDuplicateLikeError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateLike,
		Message:  fmt.Sprintf("この記事は既にいいね済みです: %s", articleID),
		Category: "engagement",
		Action:   "いいねを取り消す場合はDELETEリクエストを使用してください。",
	}
}

// NewEmptyContentError は空コメントエラーを生成する。
func NewEmptyContentError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyContent,
		Message:  "コメント本文が空です。",
		Category: "validation",
		Action:   "コメント本文を入力してください。",
	}
}

// NewArticleNotFoundError は記事未検出エラーを生成する。
func NewArticleNotFoundError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", articleID),
		Category: "engagement",
		Action:   "記事IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidLanguageError は無効な言語コードエラーを生成する。
func NewInvalidLanguageError(lang string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLanguage,
		Message:  fmt.Sprintf("無効な言語コードです: %s", lang),
		Category: "validation",
		Action:   "ISO 639形式の言語コード（en, ja等）を指定してください。",
	}
}

// NewInvalidRequestError はリクエスト形式エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("不正なリクエストです: %s", reason),
		Category: "validation",
		Action:   "リクエスト形式を確認してください。",
	}
}

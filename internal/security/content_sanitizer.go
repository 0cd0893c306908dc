// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー投稿テキストのサニタイズ機能の
// インターフェースを定義する。コメント本文の保存前に使用される。
type ContentSanitizerService interface {
	// SanitizeText は入力からHTMLタグをすべて除去し、
	// 前後の空白を取り除いたプレーンテキストを返す。
	// コメントはプレーンテキストとして扱うため、許可タグは存在しない。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグと属性を除去し、テキストノードのみを残す。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力からHTMLをすべて除去したプレーンテキストを返す。
// StrictPolicyの出力はHTMLエスケープ済みのため、プレーンテキストとして
// 保存する前にエスケープを戻す。
func (s *contentSanitizer) SanitizeText(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

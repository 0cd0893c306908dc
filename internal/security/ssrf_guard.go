// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/doyensec/safeurl"
)

// SSRFGuardService はSSRF防止機能のインターフェースを定義する。
// Wikipedia APIへのリクエストはユーザーが指定した言語コードをホスト名に
// 埋め込むため（{lang}.wikipedia.org）、外向きHTTPクライアントは
// 常にSSRF防止付きのものを使用する。
type SSRFGuardService interface {
	// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
	// safeurlライブラリにより、プライベートIP、ループバック、リンクローカル、
	// メタデータIPへのリクエストが自動的にブロックされる。
	// DNS再バインディング攻撃への対策も有効化される。
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client

	// ValidateLanguageCode は言語コードがホスト名に埋め込んでも安全な
	// 形式であることを検証する。
	ValidateLanguageCode(lang string) error
}

// allowedSchemes はSSRF防止で許可されるURLスキーム。
var allowedSchemes = []string{"http", "https"}

// languageCodePattern はWikipediaのサブドメインとして妥当な言語コードの形式。
// ISO 639系のコード（en, ja, zh-yue等）のみを許可し、
// ドットやスラッシュによるホスト名インジェクションを防ぐ。
var languageCodePattern = regexp.MustCompile(`^[a-z]{2,3}(-[a-z0-9]+)*$`)

// ssrfGuard はSSRFGuardServiceの実装。
type ssrfGuard struct{}

// NewSSRFGuard はSSRFGuardServiceの新しいインスタンスを生成する。
func NewSSRFGuard() *ssrfGuard {
	return &ssrfGuard{}
}

// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// safeurlのデフォルト設定により以下がブロックされる:
//   - プライベートIPアドレス (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
//   - ループバックアドレス (127.0.0.0/8, ::1)
//   - リンクローカルアドレス (169.254.0.0/16, fe80::/10)
//   - メタデータIPアドレス (169.254.169.254)
//
// safeurlはnet.DialerのControlフックでDNS解決後のIPアドレスを検証するため、
// DNS再バインディング攻撃にも対応している。
func (g *ssrfGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

// ValidateLanguageCode は言語コードの形式を検証する。
// リクエストURLのホスト名を構築する前の静的チェックとして使用する。
func (g *ssrfGuard) ValidateLanguageCode(lang string) error {
	if lang == "" {
		return fmt.Errorf("empty language code")
	}
	if !languageCodePattern.MatchString(lang) {
		return fmt.Errorf("invalid language code: %q", lang)
	}
	return nil
}

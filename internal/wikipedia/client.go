// Package wikipedia はWikipedia APIからのランダム記事取得を提供する。
// generator=randomを使用して標準名前空間の記事サマリーを一括取得する。
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/wikiswipe/internal/metrics"
	"github.com/hitoshi/wikiswipe/internal/model"
)

// defaultEndpointFormat はWikipedia APIエンドポイントの形式。
// %sには検証済みの言語コードが入る。
const defaultEndpointFormat = "https://%s.wikipedia.org/w/api.php"

// LanguageValidator は言語コード検証のインターフェース。
// 言語コードはリクエストURLのホスト名を構成するため、取得前に必ず検証する。
type LanguageValidator interface {
	ValidateLanguageCode(lang string) error
}

// Client はWikipedia APIのクライアント。
// ランダム記事ジェネレーターを使用して記事サマリーのバッチを取得する。
type Client struct {
	httpClient     *http.Client
	validator      LanguageValidator
	logger         *slog.Logger
	metrics        metrics.MetricsCollector
	batchSize      int
	maxBodySize    int64
	endpointFormat string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(
	httpClient *http.Client,
	validator LanguageValidator,
	logger *slog.Logger,
	collector metrics.MetricsCollector,
	batchSize int,
	maxBodySize int64,
) *Client {
	return &Client{
		httpClient:     httpClient,
		validator:      validator,
		logger:         logger,
		metrics:        collector,
		batchSize:      batchSize,
		maxBodySize:    maxBodySize,
		endpointFormat: defaultEndpointFormat,
	}
}

// apiResponse はWikipedia APIのレスポンス形式。
type apiResponse struct {
	Query *struct {
		Pages map[string]apiPage `json:"pages"`
	} `json:"query"`
}

// apiPage はレスポンス内の個別ページ。
type apiPage struct {
	PageID   int64  `json:"pageid"`
	Title    string `json:"title"`
	Extract  string `json:"extract"`
	FullURL  string `json:"fullurl"`
	Original *struct {
		Source string `json:"source"`
	} `json:"original"`
}

// FetchBatch は指定言語のWikipediaからランダム記事のバッチを取得する。
// 画像を持たないページは除外されるため、返される候補数はバッチサイズを
// 下回ることがある。取得・パース失敗時はエラーを返す（リトライは行わず、
// 呼び出し元が既存プールで継続する）。
func (c *Client) FetchBatch(ctx context.Context, lang string) ([]model.CandidateArticle, error) {
	// 言語コード検証（ホスト名インジェクション防止）
	if err := c.validator.ValidateLanguageCode(lang); err != nil {
		return nil, fmt.Errorf("言語コードの検証に失敗しました: %w", err)
	}

	// リクエストURL構築
	reqURL, err := url.Parse(fmt.Sprintf(c.endpointFormat, lang))
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("generator", "random")
	q.Set("grnnamespace", "0")
	q.Set("grnlimit", strconv.Itoa(c.batchSize))
	q.Set("prop", "extracts|pageimages|info")
	q.Set("exintro", "true")
	q.Set("explaintext", "true")
	q.Set("piprop", "original")
	q.Set("inprop", "url")
	reqURL.RawQuery = q.Encode()

	// HTTPリクエスト作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "WikiSwipe/1.0 Article Discovery")

	// HTTPリクエスト実行
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordFetchFailure(lang, "http_error")
		c.logger.Error("Wikipedia APIの呼び出しに失敗しました",
			slog.String("language", lang),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	c.metrics.RecordFetchLatency(time.Since(start))
	c.metrics.RecordHTTPStatus(resp.StatusCode)

	// HTTPステータスチェック
	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordFetchFailure(lang, "http_status")
		c.logger.Error("Wikipedia APIがエラーステータスを返しました",
			slog.String("language", lang),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("Wikipedia APIがステータス %d を返しました", resp.StatusCode)
	}

	// レスポンスボディ読み取り（最大サイズ制限付き）
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		c.metrics.RecordFetchFailure(lang, "read_error")
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("language", lang),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	// JSONデコード
	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.metrics.RecordFetchFailure(lang, "parse_error")
		c.logger.Error("Wikipedia APIのレスポンスのパースに失敗しました",
			slog.String("language", lang),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if result.Query == nil || len(result.Query.Pages) == 0 {
		c.metrics.RecordFetchFailure(lang, "empty_response")
		return nil, fmt.Errorf("Wikipedia APIのレスポンスにページが含まれていません")
	}

	// 画像を持つページのみを候補に変換する
	candidates := make([]model.CandidateArticle, 0, len(result.Query.Pages))
	for _, page := range result.Query.Pages {
		if page.Title == "" || page.Original == nil || page.Original.Source == "" {
			continue
		}
		candidates = append(candidates, model.CandidateArticle{
			WikiID:   fmt.Sprintf("%s:%d", lang, page.PageID),
			Title:    page.Title,
			Excerpt:  page.Extract,
			ImageURL: page.Original.Source,
			Language: lang,
		})
	}

	c.metrics.RecordFetchSuccess(lang)
	c.logger.Info("Wikipedia記事の取得が完了しました",
		slog.String("language", lang),
		slog.Int("pages_total", len(result.Query.Pages)),
		slog.Int("candidates", len(candidates)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return candidates, nil
}

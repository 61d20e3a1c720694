// Package api はバックエンドREST APIへの統一HTTPトランスポートを提供する。
// 認証ヘッダーの付与、タイムアウト制御、成功/エラーレスポンスの正規化を行う。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dogmates/dogmates-bff/internal/metrics"
	"github.com/dogmates/dogmates-bff/internal/model"
	"github.com/dogmates/dogmates-bff/internal/token"
)

// DefaultTimeout はリクエストのデフォルトタイムアウト。
const DefaultTimeout = 30 * time.Second

// Response は正規化されたAPIレスポンス。
// トランスポート層のあらゆる失敗はSuccess=false+Errに正規化され、
// 呼び出し元にパニックや例外として伝播することはない。
type Response struct {
	Success bool
	Data    json.RawMessage
	Err     *model.APIError
}

// RequestOptions はリクエストの追加オプション。
type RequestOptions struct {
	Headers map[string]string
	Body    any
	Timeout time.Duration // 0の場合はクライアントのデフォルト
	NoAuth  bool          // trueの場合は認証ヘッダーを付与しない
}

// Client はバックエンドAPIのHTTPクライアント。
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *token.Manager
	logger     *slog.Logger
	metrics    metrics.Collector
	timeout    time.Duration
}

// NewClient はClientを生成する。timeoutが0の場合はDefaultTimeoutを使用する。
func NewClient(httpClient *http.Client, baseURL string, tokens *token.Manager, logger *slog.Logger, collector metrics.Collector, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		logger:     logger,
		metrics:    collector,
		timeout:    timeout,
	}
}

// Request はHTTPリクエストを実行し、正規化したレスポンスを返す。
// 認証が必要な場合でもトークンが無ければヘッダーなしでそのまま送信する
// （ローカルでリクエストをブロックすることはない）。
func (c *Client) Request(ctx context.Context, method, endpoint string, opts RequestOptions) *Response {
	reqURL := c.buildURL(endpoint)

	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return failure(model.NewInvalidRequestError(err.Error()))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return failure(model.NewInvalidRequestError(err.Error()))
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	if !opts.NoAuth {
		// トークンがあるときだけAuthorizationを付与する
		if t, err := c.tokens.Token(); err == nil && t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordUpstreamLatency(time.Since(start))

	if err != nil {
		return c.classifyTransportError(endpoint, err)
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamRequest(resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordUpstreamFailure("read")
		return failure(model.NewNetworkFailureError(err.Error()))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := extractUpstreamError(resp.StatusCode, resp.Status, raw)
		c.logger.Warn("バックエンドがエラーステータスを返しました",
			slog.String("endpoint", endpoint),
			slog.Int("http_status", resp.StatusCode),
			slog.String("error", apiErr.Message),
		)
		return failure(apiErr)
	}

	return &Response{Success: true, Data: raw}
}

// Get はGETリクエストを実行する。
func (c *Client) Get(ctx context.Context, endpoint string) *Response {
	return c.Request(ctx, http.MethodGet, endpoint, RequestOptions{})
}

// Post はPOSTリクエストを実行する。
func (c *Client) Post(ctx context.Context, endpoint string, body any) *Response {
	return c.Request(ctx, http.MethodPost, endpoint, RequestOptions{Body: body})
}

// Put はPUTリクエストを実行する。
func (c *Client) Put(ctx context.Context, endpoint string, body any) *Response {
	return c.Request(ctx, http.MethodPut, endpoint, RequestOptions{Body: body})
}

// Patch はPATCHリクエストを実行する。
func (c *Client) Patch(ctx context.Context, endpoint string, body any) *Response {
	return c.Request(ctx, http.MethodPatch, endpoint, RequestOptions{Body: body})
}

// Delete はDELETEリクエストを実行する。
func (c *Client) Delete(ctx context.Context, endpoint string) *Response {
	return c.Request(ctx, http.MethodDelete, endpoint, RequestOptions{})
}

// CheckHealth はGET /healthzで疎通確認を行い、{"status":"ok"}を期待する。
func (c *Client) CheckHealth(ctx context.Context) bool {
	resp := c.Request(ctx, http.MethodGet, "/healthz", RequestOptions{NoAuth: true, Timeout: 5 * time.Second})
	if !resp.Success {
		return false
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &body); err != nil {
		return false
	}
	return body.Status == "ok"
}

// buildURL はエンドポイントから絶対URLを構築する。
// すでに絶対URLの場合はそのまま使用する。
func (c *Client) buildURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// encodeBody はボディをシリアライズする。
// url.Valuesはフォームエンコード、文字列はそのまま、その他はJSONとして扱う。
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "application/json", nil
	case url.Values:
		return strings.NewReader(b.Encode()), "application/x-www-form-urlencoded", nil
	case string:
		return strings.NewReader(b), "application/json", nil
	case []byte:
		return bytes.NewReader(b), "application/json", nil
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("リクエストボディのシリアライズに失敗しました: %w", err)
		}
		return bytes.NewReader(raw), "application/json", nil
	}
}

// classifyTransportError はネットワークレベルの失敗を分類する。
// タイムアウト → timeout、接続系 → network、それ以外はメッセージをそのまま返す。
func (c *Client) classifyTransportError(endpoint string, err error) *Response {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.metrics.RecordUpstreamFailure("timeout")
		c.logger.Warn("バックエンドリクエストがタイムアウトしました",
			slog.String("endpoint", endpoint),
		)
		return failure(model.NewRequestTimeoutError())
	case isNetworkError(err):
		c.metrics.RecordUpstreamFailure("network")
		c.logger.Warn("バックエンドへの接続に失敗しました",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return failure(model.NewNetworkFailureError(err.Error()))
	default:
		c.metrics.RecordUpstreamFailure("other")
		return failure(&model.APIError{
			Code:     model.ErrCodeUpstreamError,
			Message:  err.Error(),
			Category: "transport",
			Action:   "しばらく待ってから再度お試しください。",
		})
	}
}

// isNetworkError は接続レベルの失敗（DNS解決失敗、接続拒否等）かを返す。
func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !urlErr.Timeout()
	}
	return false
}

// extractUpstreamError は非2xxレスポンスからエラーメッセージを抽出する。
// 優先順位: JSONのdetail → message → 文字列ボディ → HTMLエラーページの定型文、
// 加えて404/403には専用の定型文を使う。
func extractUpstreamError(statusCode int, status string, raw []byte) *model.APIError {
	detail := fmt.Sprintf("HTTP Error: %s", status)

	switch statusCode {
	case http.StatusNotFound:
		detail = "APIエンドポイントが実装されていません"
	case http.StatusForbidden:
		detail = "アクセスが拒否されました（飼い主レコードまたは権限の不足）"
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if d, ok := parsed["detail"].(string); ok && d != "" {
			detail = d
		} else if m, ok := parsed["message"].(string); ok && m != "" {
			detail = m
		}
	} else {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			detail = s
		} else if isHTMLPage(raw) {
			detail = "サーバーがHTMLエラーページを返しました（プロキシまたはプラットフォーム側の障害）"
		} else if len(raw) > 0 {
			body := string(raw)
			if len(body) > 100 {
				body = body[:100]
			}
			detail = body
		}
	}

	return model.NewUpstreamError(statusCode, detail)
}

// isHTMLPage はレスポンスボディがHTMLエラーページかを判定する。
func isHTMLPage(raw []byte) bool {
	s := string(raw)
	return strings.Contains(s, "<html") || strings.Contains(s, "<!DOCTYPE")
}

func failure(err *model.APIError) *Response {
	return &Response{Success: false, Err: err}
}

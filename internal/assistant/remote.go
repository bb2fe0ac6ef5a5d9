package assistant

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"blog-planner-go/internal/model"
	"blog-planner-go/pkg/log"
)

// RemoteResponder 把用户输入发给固定的文本接口，响应体原样作为回复。
type RemoteResponder struct {
	baseURL  string
	client   *http.Client
	fallback string
}

// RemoteOption 定制 RemoteResponder。
type RemoteOption func(*RemoteResponder)

// WithHTTPClient 替换默认的 http.Client。
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteResponder) { r.client = c }
}

// WithFallback 替换失败时的道歉语。
func WithFallback(msg string) RemoteOption {
	return func(r *RemoteResponder) { r.fallback = msg }
}

// NewRemoteResponder 创建一个 RemoteResponder。
func NewRemoteResponder(baseURL string, opts ...RemoteOption) *RemoteResponder {
	r := &RemoteResponder{
		baseURL:  baseURL,
		client:   &http.Client{},
		fallback: DefaultFallback,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond 发起一次 GET 请求，不重试。传输或状态码失败时记录日志并返回道歉语；
// 调用方取消或超时则返回 ctx 的错误，不生成回复。对话记录不参与请求。
func (r *RemoteResponder) Respond(ctx context.Context, input string, _ []model.Message) (string, error) {
	body, err := r.fetch(ctx, input)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Errorf("[RemoteResponder] 调用远程助手失败: %v", err)
		return r.fallback, nil
	}
	return body, nil
}

func (r *RemoteResponder) fetch(ctx context.Context, input string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.requestURL(input), nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrResponseUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResponseUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrResponseUnavailable, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrResponseUnavailable, err)
	}
	return string(data), nil
}

func (r *RemoteResponder) requestURL(input string) string {
	sep := "?"
	if strings.Contains(r.baseURL, "?") {
		sep = "&"
	}
	return r.baseURL + sep + "message=" + encodeComponent(input)
}

// componentUnescaper 还原 encodeURIComponent 保留原样的字符。
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent 对查询参数做百分号编码：空格编码为 %20，
// 字母数字与 -_.!~*'() 保持原样。
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

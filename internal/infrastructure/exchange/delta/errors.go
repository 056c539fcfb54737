package delta

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthFailed 401：凭证错误，需要用户处理，不会自动重试
	ErrAuthFailed = errors.New("delta: authentication failed")
	// ErrNotFound 响应缺少 success 标记或期望字段
	ErrNotFound = errors.New("delta: not found")
	// ErrNoData K线查询返回空序列
	ErrNoData = errors.New("delta: no candle data")
	// ErrRequest 网络错误、超时或非 401 的 HTTP 错误
	ErrRequest = errors.New("delta: request failed")
	// ErrMissingCredentials api key 或 secret 为空
	ErrMissingCredentials = errors.New("delta: api key and secret are required")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("delta http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrAuthFailed
	}
	return ErrRequest
}

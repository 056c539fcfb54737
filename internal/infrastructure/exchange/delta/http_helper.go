package delta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// publicRequest 发送无需签名的 GET 请求
func (c *APIClient) publicRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	pathWithQuery := withQuery(path, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathWithQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, pathWithQuery)
}

// signedQueryRequest 发送带 query 的签名请求
// timestamp 与签名在每次调用时重新生成，签名内容与发出的 path+query 完全一致
func (c *APIClient) signedQueryRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	pathWithQuery := withQuery(path, params)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+pathWithQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	timestamp := Timestamp(c.now())
	signature := c.credentials.Sign(req.Method, pathWithQuery, timestamp, "")

	req.Header.Set("api-key", c.credentials.APIKey())
	req.Header.Set("timestamp", timestamp)
	req.Header.Set("signature", signature)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, pathWithQuery)
}

func (c *APIClient) do(req *http.Request, pathWithQuery string) ([]byte, error) {
	log.Debug().
		Str("method", req.Method).
		Str("path", pathWithQuery).
		Str("api_key", mask(req.Header.Get("api-key"))).
		Str("timestamp", req.Header.Get("timestamp")).
		Msg("delta request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Str("path", pathWithQuery).
		Bytes("body", body).
		Msg("delta response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

package delta

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Credentials 包含 Delta API 凭证和签名方法
type Credentials struct {
	apiKey    string
	apiSecret string
}

// NewCredentials 创建凭证对象，key/secret 任一为空即失败
func NewCredentials(apiKey, apiSecret string) (*Credentials, error) {
	apiKey = strings.TrimSpace(apiKey)
	apiSecret = strings.TrimSpace(apiSecret)
	if apiKey == "" || apiSecret == "" {
		return nil, ErrMissingCredentials
	}
	return &Credentials{apiKey: apiKey, apiSecret: apiSecret}, nil
}

// Sign 生成 Delta HMAC-SHA256 签名
// Delta 签名: HEX(HMAC-SHA256(method + timestamp + pathWithQuery + body, secret))
func (c *Credentials) Sign(method, pathWithQuery, timestamp, body string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(strings.ToUpper(method) + timestamp + pathWithQuery + body))
	return hex.EncodeToString(h.Sum(nil))
}

// APIKey 返回 API Key
func (c *Credentials) APIKey() string {
	return c.apiKey
}

// Timestamp renders t as whole Unix seconds.
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

package delta

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultBaseURL = "https://api.delta.exchange"
	DefaultTimeout = 10 * time.Second
)

// Options 构建客户端所需参数
type Options struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
	// HTTPClient overrides the default client; its own Timeout is kept as is.
	HTTPClient *http.Client
}

// APIClient 封装访问 Delta REST API 所需的共享依赖
type APIClient struct {
	credentials *Credentials
	httpClient  *http.Client
	baseURL     string
	validate    *validator.Validate
	now         func() time.Time
}

func newAPIClient(opts Options) (*APIClient, error) {
	creds, err := NewCredentials(opts.APIKey, opts.APISecret)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &APIClient{
		credentials: creds,
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		validate:    validator.New(),
		now:         time.Now,
	}, nil
}

// ===== Manager =====

// Manager Delta 统一管理器，行情与账户共享同一组凭证和 http.Client
type Manager struct {
	Market  *MarketClient
	Account *AccountClient
}

// NewManager 通过一组凭证创建行情与账户客户端
func NewManager(opts Options) (*Manager, error) {
	apiClient, err := newAPIClient(opts)
	if err != nil {
		return nil, err
	}
	return &Manager{
		Market:  NewMarketClient(apiClient),
		Account: NewAccountClient(apiClient),
	}, nil
}

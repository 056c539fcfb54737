package delta

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"deltawatch/internal/domain/model"
)

// AccountClient Delta 账户查询客户端
type AccountClient struct {
	*APIClient
}

// NewAccountClient 创建账户客户端
func NewAccountClient(client *APIClient) *AccountClient {
	return &AccountClient{APIClient: client}
}

type profileResponse struct {
	Success bool        `json:"success"`
	Result  *profileDTO `json:"result" validate:"required"`
}

type profileDTO struct {
	ID       flexString `json:"id"`
	Email    string     `json:"email"`
	Nickname string     `json:"nickname"`
	Country  string     `json:"country"`
}

// flexString accepts both JSON strings and bare numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// GetAccountProfile 获取账户信息，用于校验凭证
// 401 返回 ErrAuthFailed，不重试
func (c *AccountClient) GetAccountProfile(ctx context.Context) (*model.Profile, error) {
	body, err := c.signedQueryRequest(ctx, http.MethodGet, "/v2/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch delta profile: %w", err)
	}

	var resp profileResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: profile: %v", ErrNotFound, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: profile", ErrNotFound)
	}
	if err := c.validate.Struct(&resp); err != nil {
		return nil, fmt.Errorf("%w: profile: %v", ErrNotFound, err)
	}

	return &model.Profile{
		ID:       string(resp.Result.ID),
		Email:    resp.Result.Email,
		Nickname: resp.Result.Nickname,
		Country:  resp.Result.Country,
	}, nil
}

package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/errcode"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

const (
	addressPath = "/sell/address"
	settlePath  = "/sell"

	defaultAddressMsg = "Unable to fetch sell address"
	invalidAddressMsg = "Invalid sell address response"
	defaultSettleMsg  = "Unable to settle sale"
)

// Client 签名服务 (signing agent) 客户端
// 签名服务持有卖家钱包私钥, 负责校验买家 PSBT, 补全卖家签名并广播
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option 客户端可选项
type Option func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient 创建签名服务客户端
// 超时由调用方通过 context 控制, 这里只设置一个兜底超时
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type addressResp struct {
	TaprootAddress *string `json:"taprootAddress"`
	Error          *string `json:"error"`
}

// FetchAddress 获取卖家 taproot 地址
// 1. GET /sell/address
// 2. 非 2xx 时优先返回服务端给出的 error 字段
// 3. 响应中缺少字符串类型的 taprootAddress 字段视为失败
func (c *Client) FetchAddress(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+addressPath, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed on create address request")
	}

	status, body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var data addressResp
	// 响应体无法解析时按空对象处理
	_ = json.Unmarshal(body, &data)

	if status < 200 || status > 299 {
		if data.Error != nil {
			return "", errcode.NewUpstreamErr(*data.Error)
		}
		return "", errcode.NewUpstreamErr(defaultAddressMsg)
	}
	if data.TaprootAddress == nil || *data.TaprootAddress == "" {
		return "", errcode.NewUpstreamErr(invalidAddressMsg)
	}
	return *data.TaprootAddress, nil
}

type settleResp struct {
	types.SettleResult
	Error *string `json:"error"`
}

// Settle 提交买家签名的 PSBT 进行结算
// 返回 accepted=false 表示签名服务拒绝了该交易 (如签名无效, 输入已被花费)
func (c *Client) Settle(ctx context.Context, sale types.SaleRequest) (*types.SettleResult, error) {
	payload, err := json.Marshal(sale)
	if err != nil {
		return nil, errors.Wrap(err, "failed on marshal settle request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+settlePath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed on create settle request")
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var data settleResp
	if err := json.Unmarshal(body, &data); err != nil && status >= 200 && status <= 299 {
		return nil, errcode.NewUpstreamErr("Invalid settle response")
	}

	if status < 200 || status > 299 {
		if data.Error != nil {
			return nil, errcode.NewUpstreamErr(*data.Error)
		}
		return nil, errcode.NewUpstreamErr(defaultSettleMsg)
	}
	return &data.SettleResult, nil
}

// do 发送请求并读取完整响应体
// 网络错误与超时统一转换为上游错误
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return 0, nil, errors.Wrap(errcode.ErrUpstreamTimeout, req.URL.Path)
		}
		return 0, nil, errors.Wrap(errcode.NewUpstreamErr(err.Error()), req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(errcode.NewUpstreamErr("failed on read response body"), req.URL.Path)
	}
	return resp.StatusCode, body, nil
}

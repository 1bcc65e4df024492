// Package wecom is a client for the WeCom (enterprise WeChat) token and JS-API ticket endpoints.
package wecom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/domain"
	"github.com/kailas-cloud/kbproxy/internal/metrics"
)

// DefaultBaseURL is the vendor API host.
const DefaultBaseURL = "https://qyapi.weixin.qq.com"

// Client fetches access tokens and jsapi tickets. Nothing is cached.
type Client struct {
	corpID     string
	corpSecret string
	baseURL    string
	http       *http.Client
	logger     *zap.Logger
}

// Config holds the client settings.
type Config struct {
	CorpID     string
	CorpSecret string
	BaseURL    string       // defaults to DefaultBaseURL
	HTTPClient *http.Client // defaults to a client with no timeout
	Logger     *zap.Logger
}

// NewClient creates a WeCom API client.
func NewClient(cfg *Config) *Client {
	c := &Client{
		corpID:     cfg.CorpID,
		corpSecret: cfg.CorpSecret,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// CorpID returns the configured corp id (the JS-SDK appId).
func (c *Client) CorpID() string { return c.corpID }

// Configured reports whether both corp id and secret are set.
func (c *Client) Configured() bool {
	return c.corpID != "" && c.corpSecret != ""
}

// vendorResponse covers both endpoints; errcode is absent or 0 on success.
type vendorResponse struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	AccessToken string `json:"access_token"`
	Ticket      string `json:"ticket"`
}

// GetAccessToken exchanges corp id and secret for an access token.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("corpid", c.corpID)
	q.Set("corpsecret", c.corpSecret)

	resp, err := c.get(ctx, "gettoken", "/cgi-bin/gettoken", q)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", domain.NewUpstreamError(domain.VendorWeCom, http.StatusOK, 0, "empty access_token")
	}
	return resp.AccessToken, nil
}

// GetJSAPITicket exchanges an access token for a jsapi ticket.
func (c *Client) GetJSAPITicket(ctx context.Context, accessToken string) (string, error) {
	q := url.Values{}
	q.Set("access_token", accessToken)

	resp, err := c.get(ctx, "get_jsapi_ticket", "/cgi-bin/get_jsapi_ticket", q)
	if err != nil {
		return "", err
	}
	if resp.Ticket == "" {
		return "", domain.NewUpstreamError(domain.VendorWeCom, http.StatusOK, 0, "empty ticket")
	}
	return resp.Ticket, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values) (vendorResponse, error) {
	start := time.Now()
	resp, errType, err := c.doGet(ctx, path, q)
	metrics.ObserveUpstream(domain.VendorWeCom, op, time.Since(start).Seconds(), errType)
	if err != nil {
		c.logger.Warn("WeCom request failed", zap.String("operation", op), zap.Error(err))
		return vendorResponse{}, err
	}
	return resp, nil
}

func (c *Client) doGet(ctx context.Context, path string, q url.Values) (vendorResponse, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return vendorResponse{}, "encode", fmt.Errorf("build wecom request: %w", err)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return vendorResponse{}, "transport", fmt.Errorf("wecom request: %w",
			domain.NewUpstreamError(domain.VendorWeCom, 0, 0, err.Error()))
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return vendorResponse{}, "transport", fmt.Errorf("read wecom response: %w",
			domain.NewUpstreamError(domain.VendorWeCom, httpResp.StatusCode, 0, err.Error()))
	}

	var resp vendorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return vendorResponse{}, "malformed",
			domain.NewUpstreamError(domain.VendorWeCom, httpResp.StatusCode, 0, "malformed payload: "+err.Error())
	}
	if resp.ErrCode != 0 {
		return vendorResponse{}, "vendor_code",
			domain.NewUpstreamError(domain.VendorWeCom, httpResp.StatusCode, resp.ErrCode, resp.ErrMsg)
	}
	return resp, "", nil
}

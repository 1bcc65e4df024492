// Package qiyu is a client for the Qiyu robot knowledge-base open API.
package qiyu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/domain"
	"github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
	"github.com/kailas-cloud/kbproxy/internal/metrics"
)

const (
	// DefaultBaseURL is the vendor API host.
	DefaultBaseURL = "https://qiyukf.com"

	knowledgePath = "/openapi/robot/data/knowledge"

	// ProbeMid and ProbeSize are the fixed parameters of the diagnostic call.
	ProbeMid  = 0
	ProbeSize = 10
)

// Client calls the knowledge listing endpoint with checksum authentication.
type Client struct {
	appKey    string
	appSecret string
	baseURL   string
	http      *http.Client
	now       func() time.Time
	logger    *zap.Logger
}

// Config holds the client settings.
type Config struct {
	AppKey     string
	AppSecret  string
	BaseURL    string       // defaults to DefaultBaseURL
	HTTPClient *http.Client // defaults to a client with no timeout
	Now        func() time.Time
	Logger     *zap.Logger
}

// NewClient creates a knowledge-base API client.
func NewClient(cfg *Config) *Client {
	c := &Client{
		appKey:    cfg.AppKey,
		appSecret: cfg.AppSecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      cfg.HTTPClient,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Configured reports whether both app key and secret are set.
func (c *Client) Configured() bool {
	return c.appKey != "" && c.appSecret != ""
}

// ListPage fetches one page of records after cursor mid.
func (c *Client) ListPage(ctx context.Context, mid int64, size int) (knowledge.Page, error) {
	start := time.Now()
	page, errType, err := c.listPage(ctx, mid, size)
	metrics.ObserveUpstream(domain.VendorQiyu, "list", time.Since(start).Seconds(), errType)
	if err != nil {
		c.logger.Warn("Knowledge page request failed",
			zap.Int64("mid", mid), zap.Int("size", size), zap.Error(err))
		return knowledge.Page{}, err
	}
	return page, nil
}

func (c *Client) listPage(ctx context.Context, mid int64, size int) (knowledge.Page, string, error) {
	call, err := c.newCall(mid, size)
	if err != nil {
		return knowledge.Page{}, "encode", err
	}
	c.logger.Debug("Knowledge page request",
		zap.Int64("mid", mid),
		zap.Int("size", size),
		zap.Int64("time", call.sig.Time),
		zap.String("content_hash", call.sig.ContentHash),
		zap.String("checksum", call.sig.Checksum),
	)

	status, body, err := c.do(ctx, call)
	if err != nil {
		return knowledge.Page{}, "transport", err
	}
	if status < 200 || status > 299 {
		return knowledge.Page{}, "http_status",
			domain.NewUpstreamError(domain.VendorQiyu, status, 0, truncate(string(body)))
	}

	page, errType, err := decodePage(body)
	if err != nil {
		return knowledge.Page{}, errType, err
	}
	return page, "", nil
}

// Probe performs the fixed {mid:0,size:10} call and reports everything about it.
// Failures are recorded in the report, never returned.
func (c *Client) Probe(ctx context.Context) knowledge.ProbeReport {
	report := knowledge.ProbeReport{Mid: ProbeMid, Size: ProbeSize}

	call, err := c.newCall(ProbeMid, ProbeSize)
	if err != nil {
		report.Err = err
		return report
	}
	report.Timestamp = call.sig.Time
	report.Checksum = call.sig.Checksum
	report.URL = call.url

	c.logger.Info("Knowledge probe request",
		zap.Int64("time", call.sig.Time),
		zap.String("content_hash", call.sig.ContentHash),
		zap.String("checksum", call.sig.Checksum),
		zap.ByteString("body", call.body),
	)

	start := time.Now()
	status, body, err := c.do(ctx, call)
	errType := ""
	if err != nil {
		errType = "transport"
	} else if status < 200 || status > 299 {
		errType = "http_status"
	}
	metrics.ObserveUpstream(domain.VendorQiyu, "probe", time.Since(start).Seconds(), errType)

	if err != nil {
		report.Err = err
		return report
	}

	report.Status = status
	report.OK = status >= 200 && status <= 299
	report.Raw = string(body)
	if json.Valid(body) {
		report.Body = json.RawMessage(body)
	}
	c.logger.Info("Knowledge probe response", zap.Int("status", status), zap.Int("bytes", len(body)))
	return report
}

type signedCall struct {
	url  string
	body []byte
	sig  Signature
}

func (c *Client) newCall(mid int64, size int) (signedCall, error) {
	body, err := encodeListRequest(mid, size)
	if err != nil {
		return signedCall{}, err
	}
	// Timestamp is taken right before the checksum is computed.
	sig := Sign(c.appSecret, body, c.now())
	u := c.baseURL + knowledgePath +
		"?appKey=" + url.QueryEscape(c.appKey) +
		"&time=" + strconv.FormatInt(sig.Time, 10) +
		"&checksum=" + sig.Checksum
	return signedCall{url: u, body: body, sig: sig}, nil
}

func (c *Client) do(ctx context.Context, cl signedCall) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.url, bytes.NewReader(cl.body))
	if err != nil {
		return 0, nil, fmt.Errorf("build knowledge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("charset", "UTF-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("knowledge request: %w",
			domain.NewUpstreamError(domain.VendorQiyu, 0, 0, err.Error()))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read knowledge response: %w",
			domain.NewUpstreamError(domain.VendorQiyu, resp.StatusCode, 0, err.Error()))
	}
	return resp.StatusCode, body, nil
}

// envelope is the outer vendor response. Message is either an object
// or a JSON-encoded string holding that object.
type envelope struct {
	Code    *int            `json:"code"`
	Message json.RawMessage `json:"message"`
}

type listMessage struct {
	Data  json.RawMessage `json:"data"`
	IsEnd json.RawMessage `json:"isEnd"`
}

func decodePage(body []byte) (knowledge.Page, string, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return knowledge.Page{}, "malformed", malformed("response is not JSON: " + err.Error())
	}
	if env.Code != nil && *env.Code != 0 && *env.Code != http.StatusOK {
		return knowledge.Page{}, "vendor_code",
			domain.NewUpstreamError(domain.VendorQiyu, http.StatusOK, *env.Code, messageText(env.Message))
	}

	msg, err := decodeMessage(env.Message)
	if err != nil {
		return knowledge.Page{}, "malformed", err
	}

	data := bytes.TrimSpace(msg.Data)
	if len(data) == 0 || data[0] != '[' {
		return knowledge.Page{}, "malformed", malformed("message.data is not an array")
	}
	var records []knowledge.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return knowledge.Page{}, "malformed", malformed("message.data: " + err.Error())
	}

	return knowledge.Page{Records: records, IsEnd: parseIsEnd(msg.IsEnd)}, "", nil
}

// decodeMessage resolves the string-or-object union by inspecting the first JSON token.
func decodeMessage(raw json.RawMessage) (listMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return listMessage{}, malformed("message string: " + err.Error())
		}
		raw = bytes.TrimSpace([]byte(inner))
	}
	if len(raw) == 0 || raw[0] != '{' {
		return listMessage{}, malformed("message is not an object")
	}

	var msg listMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return listMessage{}, malformed("message: " + err.Error())
	}
	return msg, nil
}

// parseIsEnd returns 0 only for a literal numeric zero; anything else ends pagination.
func parseIsEnd(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 1
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 1
	}
	v, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != 0 {
			return 1
		}
		return 0
	}
	if v != 0 {
		return 1
	}
	return 0
}

// messageText renders the vendor message for error reports.
func messageText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return truncate(s)
	}
	return truncate(string(raw))
}

func malformed(msg string) error {
	return domain.NewUpstreamError(domain.VendorQiyu, http.StatusOK, 0, "malformed payload: "+msg)
}

func truncate(s string) string {
	const limit = 512
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

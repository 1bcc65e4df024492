package kbproxy

import (
	"context"
	"fmt"
	"time"

	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
	domsig "github.com/kailas-cloud/kbproxy/internal/domain/signature"
	"github.com/kailas-cloud/kbproxy/internal/transport/qiyu"
	"github.com/kailas-cloud/kbproxy/internal/transport/wecom"
	healthuc "github.com/kailas-cloud/kbproxy/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/kbproxy/internal/usecase/knowledge"
	probeuc "github.com/kailas-cloud/kbproxy/internal/usecase/probe"
	signatureuc "github.com/kailas-cloud/kbproxy/internal/usecase/signature"
)

// Internal interfaces for substitution in tests.
type knowledgeUseCase interface {
	FetchAll(ctx context.Context) ([]domknow.Record, error)
	Search(ctx context.Context, query string) ([]domknow.MatchResult, error)
}

type signatureUseCase interface {
	Sign(ctx context.Context, req domsig.Request) (domsig.Result, error)
}

type probeUseCase interface {
	Run(ctx context.Context) domknow.ProbeReport
}

// Client is the kbproxy SDK entry point. It is safe for concurrent use.
type Client struct {
	knowledgeSvc knowledgeUseCase
	signatureSvc signatureUseCase
	probeSvc     probeUseCase
	healthSvc    healthUseCase
	obs          *observer
}

// New creates a Client. Missing credentials are not an error here;
// the affected calls return ErrMissingConfig.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs), nil
}

func wireClient(cfg *clientConfig, obs *observer) *Client {
	knowledgeClient := qiyu.NewClient(&qiyu.Config{
		AppKey:     cfg.appKey,
		AppSecret:  cfg.appSecret,
		BaseURL:    cfg.qiyuURL,
		HTTPClient: cfg.httpClient,
	})
	wecomClient := wecom.NewClient(&wecom.Config{
		CorpID:     cfg.corpID,
		CorpSecret: cfg.corpSecret,
		BaseURL:    cfg.wecomURL,
		HTTPClient: cfg.httpClient,
	})

	return &Client{
		knowledgeSvc: knowledgeuc.New(knowledgeClient).WithLimits(cfg.maxRecords, cfg.maxResults),
		signatureSvc: signatureuc.New(wecomClient),
		probeSvc:     probeuc.New(knowledgeClient),
		healthSvc:    healthuc.New(knowledgeClient, wecomClient),
		obs:          obs,
	}
}

// Knowledge fetches every knowledge-base record, page by page.
func (c *Client) Knowledge(ctx context.Context) (_ []Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("knowledge", start, err) }()

	records, err := c.knowledgeSvc.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("knowledge: %w", err)
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = recordFromDomain(r)
	}
	return out, nil
}

// Search fetches the knowledge base and ranks it against query.
func (c *Client) Search(ctx context.Context, query string) (_ []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	matches, err := c.knowledgeSvc.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = matchFromDomain(m)
	}
	return out, nil
}

// Sign computes the JS-SDK signature for url. Every call fetches a fresh token and ticket.
func (c *Client) Sign(ctx context.Context, url, nonceStr, timestamp string) (_ Signature, err error) {
	start := time.Now()
	defer func() { c.obs.observe("sign", start, err) }()

	res, err := c.signatureSvc.Sign(ctx, domsig.Request{
		URL:       url,
		NonceStr:  nonceStr,
		Timestamp: domsig.NewFlexString(timestamp),
	})
	if err != nil {
		return Signature{}, fmt.Errorf("sign: %w", err)
	}
	return signatureFromDomain(res), nil
}

// Probe runs the fixed diagnostic call. Failures are reported in the result.
func (c *Client) Probe(ctx context.Context) ProbeResult {
	start := time.Now()
	res := probeFromDomain(c.probeSvc.Run(ctx))
	c.obs.observe("probe", start, res.Err)
	return res
}

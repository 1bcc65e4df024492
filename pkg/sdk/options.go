package kbproxy

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	appKey     string
	appSecret  string
	corpID     string
	corpSecret string

	maxRecords int
	maxResults int

	httpClient *http.Client
	qiyuURL    string
	wecomURL   string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithKnowledgeCredentials sets the knowledge-base app key and secret.
func WithKnowledgeCredentials(appKey, appSecret string) Option {
	return optionFunc(func(c *clientConfig) {
		c.appKey = appKey
		c.appSecret = appSecret
	})
}

// WithCorpCredentials sets the WeCom corp id and secret used for signing.
func WithCorpCredentials(corpID, corpSecret string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpID = corpID
		c.corpSecret = corpSecret
	})
}

// WithLimits caps the records fetched per aggregation and the results per search.
// Defaults: 10000 records, 5 results.
func WithLimits(maxRecords, maxResults int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRecords = maxRecords
		c.maxResults = maxResults
	})
}

// WithHTTPClient sets the client used for vendor calls.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// withBaseURLs points the vendor clients elsewhere; used by tests.
func withBaseURLs(qiyuURL, wecomURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.qiyuURL = qiyuURL
		c.wecomURL = wecomURL
	})
}

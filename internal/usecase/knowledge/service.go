package knowledge

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/domain"
	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
	logpkg "github.com/kailas-cloud/kbproxy/internal/logger"
	"github.com/kailas-cloud/kbproxy/internal/metrics"
)

const (
	// PageSize is the number of records requested per vendor page.
	PageSize = 1000
	// DefaultMaxRecords caps a full fetch.
	DefaultMaxRecords = 10000
	// DefaultMaxResults caps search results.
	DefaultMaxResults = 5
)

// Service aggregates the vendor knowledge base and searches it.
type Service struct {
	lister     Lister
	maxRecords int
	maxResults int
}

// New creates a knowledge service.
func New(lister Lister) *Service {
	return &Service{
		lister:     lister,
		maxRecords: DefaultMaxRecords,
		maxResults: DefaultMaxResults,
	}
}

// WithLimits overrides the record cap and result cap. Non-positive values keep the defaults.
func (s *Service) WithLimits(maxRecords, maxResults int) *Service {
	if maxRecords > 0 {
		s.maxRecords = maxRecords
	}
	if maxResults > 0 {
		s.maxResults = maxResults
	}
	return s
}

// FetchAll walks the vendor listing page by page, using the last id of each page as the
// next cursor. It stops on isEnd, on an empty page, or once maxRecords are collected.
// Any page failure aborts the whole fetch.
func (s *Service) FetchAll(ctx context.Context) ([]domknow.Record, error) {
	if !s.lister.Configured() {
		return nil, fmt.Errorf("knowledge app key/secret: %w", domain.ErrMissingConfig)
	}
	log := logpkg.FromContext(ctx)

	all := make([]domknow.Record, 0)
	var mid int64
	pages := 0
	for {
		page, err := s.lister.ListPage(ctx, mid, PageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch knowledge page (mid=%d): %w", mid, err)
		}
		pages++
		all = append(all, page.Records...)

		if len(all) >= s.maxRecords {
			if len(all) > s.maxRecords || page.IsEnd == 0 {
				log.Warn("Knowledge record cap reached, stopping",
					zap.Int("max_records", s.maxRecords), zap.Int("pages", pages))
			}
			all = all[:s.maxRecords]
			break
		}
		if page.IsEnd != 0 {
			break
		}
		last, ok := page.LastID()
		if !ok {
			break
		}
		mid = last
	}

	metrics.KnowledgeRecordsFetched.Observe(float64(len(all)))
	log.Info("Fetched knowledge base", zap.Int("records", len(all)), zap.Int("pages", pages))
	return all, nil
}

// Search fetches the whole knowledge base and fuzzy-matches query against it.
func (s *Service) Search(ctx context.Context, query string) ([]domknow.MatchResult, error) {
	if err := validation.Validate(query, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrInvalidRequest, err)
	}

	ctx = logpkg.With(ctx, zap.String("query", query))
	records, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	results := FuzzyMatch(query, records, s.maxResults)
	logpkg.FromContext(ctx).Debug("Knowledge search",
		zap.Int("records", len(records)),
		zap.Int("results", len(results)),
	)
	return results, nil
}

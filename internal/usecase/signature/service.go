package signature

import (
	"context"
	"crypto/sha1" //nolint:gosec // JS-SDK signature algorithm is fixed by the vendor
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/domain"
	domsig "github.com/kailas-cloud/kbproxy/internal/domain/signature"
	logpkg "github.com/kailas-cloud/kbproxy/internal/logger"
)

// Service signs JS-SDK configuration requests.
type Service struct {
	source TicketSource
}

// New creates a signature service.
func New(source TicketSource) *Service {
	return &Service{source: source}
}

// Sign checks configuration and input, then runs token -> ticket -> signature in order.
// Configuration and input errors are returned before any vendor call.
func (s *Service) Sign(ctx context.Context, req domsig.Request) (domsig.Result, error) {
	if err := s.CheckConfig(); err != nil {
		return domsig.Result{}, err
	}
	if err := req.Validate(); err != nil {
		return domsig.Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	log := logpkg.FromContext(ctx)

	token, err := s.source.GetAccessToken(ctx)
	if err != nil {
		log.Error("Failed to get access token", zap.Error(err))
		return domsig.Result{}, fmt.Errorf("%w: %w", domain.ErrTokenUnavailable, err)
	}

	ticket, err := s.source.GetJSAPITicket(ctx, token)
	if err != nil {
		log.Error("Failed to get jsapi ticket", zap.Error(err))
		return domsig.Result{}, fmt.Errorf("%w: %w", domain.ErrTicketUnavailable, err)
	}

	return domsig.Result{
		Signature: GenerateSignature(ticket, req.NonceStr, req.Timestamp.String(), req.URL),
		NonceStr:  req.NonceStr,
		Timestamp: req.Timestamp,
		AppID:     s.source.CorpID(),
	}, nil
}

// CheckConfig returns ErrMissingConfig unless both corp id and secret are set.
func (s *Service) CheckConfig() error {
	if !s.source.Configured() {
		return fmt.Errorf("CORP_ID/CORP_SECRET: %w", domain.ErrMissingConfig)
	}
	return nil
}

// GenerateSignature is the lowercase hex sha1 of the JS-SDK payload.
func GenerateSignature(ticket, nonceStr, timestamp, url string) string {
	sum := sha1.Sum([]byte(domsig.Payload(ticket, nonceStr, timestamp, url))) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

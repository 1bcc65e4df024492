// Package probe runs the knowledge API diagnostic call.
package probe

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/domain"
	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
	logpkg "github.com/kailas-cloud/kbproxy/internal/logger"
)

// Service wraps a Prober.
type Service struct {
	prober Prober
}

// New creates a probe service.
func New(prober Prober) *Service {
	return &Service{prober: prober}
}

// Run performs the probe. It never fails; problems are carried in the report.
func (s *Service) Run(ctx context.Context) domknow.ProbeReport {
	if !s.prober.Configured() {
		return domknow.ProbeReport{
			Err: fmt.Errorf("APP_KEY/APP_SECRET: %w", domain.ErrMissingConfig),
		}
	}

	report := s.prober.Probe(ctx)
	log := logpkg.FromContext(ctx)
	if report.Err != nil {
		log.Warn("Knowledge probe failed", zap.Error(report.Err))
	} else {
		log.Info("Knowledge probe finished", zap.Int("status", report.Status), zap.Bool("ok", report.OK))
	}
	return report
}

package kbproxy

import "github.com/kailas-cloud/kbproxy/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest    = domain.ErrInvalidRequest
	ErrMissingConfig     = domain.ErrMissingConfig
	ErrUpstream          = domain.ErrUpstream
	ErrTokenUnavailable  = domain.ErrTokenUnavailable
	ErrTicketUnavailable = domain.ErrTicketUnavailable
)

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals missing or malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMissingConfig signals absent server-side configuration (vendor credentials).
	ErrMissingConfig = errors.New("missing configuration")
	// ErrUpstream signals a vendor failure: bad HTTP status, error code or unparseable payload.
	ErrUpstream = errors.New("upstream error")
	// ErrTokenUnavailable signals that no access token could be obtained.
	ErrTokenUnavailable = errors.New("access token unavailable")
	// ErrTicketUnavailable signals that no jsapi ticket could be obtained.
	ErrTicketUnavailable = errors.New("jsapi ticket unavailable")
)

// Vendor names used in errors, logs and metric labels.
const (
	VendorQiyu  = "qiyu"
	VendorWeCom = "wecom"
)

// UpstreamError carries vendor response details and unwraps to ErrUpstream.
type UpstreamError struct {
	Vendor  string
	Status  int    // HTTP status, 0 if the response never arrived
	Code    int    // vendor error code, 0 if absent
	Message string // body excerpt or vendor message
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("%s %s: code %d: %s", e.Vendor, ErrUpstream.Error(), e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d: %s", e.Vendor, ErrUpstream.Error(), e.Status, e.Message)
	default:
		return fmt.Sprintf("%s %s: %s", e.Vendor, ErrUpstream.Error(), e.Message)
	}
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NewUpstreamError creates an upstream error for the given vendor.
func NewUpstreamError(vendor string, status, code int, message string) error {
	return &UpstreamError{Vendor: vendor, Status: status, Code: code, Message: message}
}

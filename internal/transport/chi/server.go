// Package chi exposes the knowledge, signature and probe services over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/domain"
	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
	domsig "github.com/kailas-cloud/kbproxy/internal/domain/signature"
	logpkg "github.com/kailas-cloud/kbproxy/internal/logger"
	healthuc "github.com/kailas-cloud/kbproxy/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/kbproxy/internal/usecase/knowledge"
	probeuc "github.com/kailas-cloud/kbproxy/internal/usecase/probe"
	signatureuc "github.com/kailas-cloud/kbproxy/internal/usecase/signature"
)

const maxBodyBytes = 1 << 20

// errorWriter renders an error in a route's own envelope.
type errorWriter func(w http.ResponseWriter, status int, message string, err error)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, write errorWriter) bool

// Server serves the HTTP API.
type Server struct {
	knowledge     *knowledgeuc.Service
	signature     *signatureuc.Service
	probe         *probeuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorDetails  bool
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	knowledge *knowledgeuc.Service,
	signature *signatureuc.Service,
	probe *probeuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		knowledge: knowledge,
		signature: signature,
		probe:     probe,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest),
		sentinelHandler(domain.ErrMissingConfig, http.StatusInternalServerError),
		sentinelHandler(domain.ErrTokenUnavailable, http.StatusInternalServerError),
		sentinelHandler(domain.ErrTicketUnavailable, http.StatusInternalServerError),
		upstreamHandler(logger),
	}
	return s
}

// WithErrorDetails enables stack traces in knowledge error responses.
func (s *Server) WithErrorDetails(on bool) *Server {
	s.errorDetails = on
	return s
}

// Register mounts all routes on r. r must not have routes yet.
func (s *Server) Register(r chi.Router) {
	r.Use(CORS)

	r.Route("/api/knowledge", func(r chi.Router) {
		r.Get("/", s.ListKnowledge)
		r.Post("/", s.SearchKnowledge)
		r.Options("/", Preflight)
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			s.writeKnowledgeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		})
	})

	r.Route("/api/signature", func(r chi.Router) {
		r.Post("/", s.Sign)
		r.Options("/", Preflight)
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			writeSignatureError(w, http.StatusMethodNotAllowed, "only POST is supported", nil)
		})
	})

	r.Route("/api/test", func(r chi.Router) {
		r.Get("/", s.Probe)
		r.Options("/", Preflight)
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			s.writeKnowledgeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		})
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// --- Knowledge ---

type knowledgeListResponse struct {
	Success bool             `json:"success"`
	Data    []domknow.Record `json:"data"`
	Count   int              `json:"count"`
}

type knowledgeSearchRequest struct {
	Query string `json:"query"`
}

type knowledgeSearchResponse struct {
	Success bool                  `json:"success"`
	Query   string                `json:"query"`
	Results []domknow.MatchResult `json:"results"`
	Total   int                   `json:"total"`
}

type knowledgeErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ListKnowledge handles GET /api/knowledge.
func (s *Server) ListKnowledge(w http.ResponseWriter, r *http.Request) {
	records, err := s.knowledge.FetchAll(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err, s.writeKnowledgeError)
		return
	}

	writeJSON(w, http.StatusOK, knowledgeListResponse{
		Success: true,
		Data:    records,
		Count:   len(records),
	})
}

// SearchKnowledge handles POST /api/knowledge.
func (s *Server) SearchKnowledge(w http.ResponseWriter, r *http.Request) {
	var req knowledgeSearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeKnowledgeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	results, err := s.knowledge.Search(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, r, err, s.writeKnowledgeError)
		return
	}

	writeJSON(w, http.StatusOK, knowledgeSearchResponse{
		Success: true,
		Query:   req.Query,
		Results: results,
		Total:   len(results),
	})
}

func (s *Server) writeKnowledgeError(w http.ResponseWriter, status int, message string, err error) {
	resp := knowledgeErrorResponse{Error: message}
	if s.errorDetails && err != nil && status >= http.StatusInternalServerError {
		resp.Details = err.Error() + "\n" + string(debug.Stack())
	}
	writeJSON(w, status, resp)
}

// --- Signature ---

type signatureErrorResponse struct {
	Error string `json:"error"`
}

// Sign handles POST /api/signature. Missing credentials win over a bad body.
func (s *Server) Sign(w http.ResponseWriter, r *http.Request) {
	if err := s.signature.CheckConfig(); err != nil {
		s.handleDomainError(w, r, err, writeSignatureError)
		return
	}

	var req domsig.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeSignatureError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	res, err := s.signature.Sign(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err, writeSignatureError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeSignatureError(w http.ResponseWriter, status int, message string, _ error) {
	writeJSON(w, status, signatureErrorResponse{Error: message})
}

// --- Probe ---

type probeRequestBody struct {
	Mid  int64 `json:"mid"`
	Size int   `json:"size"`
}

type probeResponse struct {
	Success     bool             `json:"success"`
	Status      int              `json:"status"`
	Timestamp   int64            `json:"timestamp,omitempty"`
	Checksum    string           `json:"checksum,omitempty"`
	URL         string           `json:"url,omitempty"`
	RequestBody probeRequestBody `json:"requestBody"`
	Response    any              `json:"response,omitempty"`
	RawResponse *string          `json:"rawResponse,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Probe handles GET /api/test. It always answers 200; failures are reported in the body.
func (s *Server) Probe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, probeToResponse(s.probe.Run(r.Context())))
}

func probeToResponse(rep domknow.ProbeReport) probeResponse {
	resp := probeResponse{
		Success:     rep.OK,
		Status:      rep.Status,
		Timestamp:   rep.Timestamp,
		Checksum:    rep.Checksum,
		URL:         rep.URL,
		RequestBody: probeRequestBody{Mid: rep.Mid, Size: rep.Size},
	}
	if rep.Err != nil {
		resp.Success = false
		resp.Error = rep.Err.Error()
		return resp
	}

	raw := rep.Raw
	resp.RawResponse = &raw
	if rep.Body != nil {
		resp.Response = rep.Body
	} else {
		resp.Response = map[string]string{"rawResponse": raw}
	}
	return resp
}

// --- Health & metrics ---

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

// decodeBody reads a JSON object. An empty body decodes to the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err //nolint:wrapcheck // surfaced verbatim as a 400
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, write errorWriter) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		write(w, status, err.Error(), err)
		return true
	}
}

// upstreamHandler handles vendor failures and logs the vendor's status and code.
func upstreamHandler(logger *zap.Logger) errorHandler {
	return func(w http.ResponseWriter, err error, write errorWriter) bool {
		if !errors.Is(err, domain.ErrUpstream) {
			return false
		}
		var ue *domain.UpstreamError
		if errors.As(err, &ue) {
			logger.Warn("upstream failure",
				zap.String("vendor", ue.Vendor),
				zap.Int("vendor_status", ue.Status),
				zap.Int("vendor_code", ue.Code),
			)
		}
		write(w, http.StatusInternalServerError, err.Error(), err)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error, write errorWriter) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err, write) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	write(w, http.StatusInternalServerError, err.Error(), err)
}

package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/transport/qiyu"
	"github.com/kailas-cloud/kbproxy/internal/transport/wecom"
	healthuc "github.com/kailas-cloud/kbproxy/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/kbproxy/internal/usecase/knowledge"
	probeuc "github.com/kailas-cloud/kbproxy/internal/usecase/probe"
	signatureuc "github.com/kailas-cloud/kbproxy/internal/usecase/signature"
)

// --- Fake vendors ---

type fakeQiyu struct {
	server *httptest.Server
	calls  atomic.Int32
	// handler overrides the default paging behaviour when set.
	handler func(w http.ResponseWriter, mid int64)
	records int
}

func newFakeQiyu(t *testing.T, records int) *fakeQiyu {
	t.Helper()
	f := &fakeQiyu{records: records}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		var body struct {
			Mid  int64 `json:"mid"`
			Size int   `json:"size"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if f.handler != nil {
			f.handler(w, body.Mid)
			return
		}
		f.page(w, body.Mid, body.Size)
	}))
	t.Cleanup(f.server.Close)
	return f
}

// page serves records with ids 1..n, questions "question <id>".
func (f *fakeQiyu) page(w http.ResponseWriter, mid int64, size int) {
	var data []map[string]any
	for id := mid + 1; id <= int64(f.records) && len(data) < size; id++ {
		data = append(data, map[string]any{
			"id":       id,
			"question": fmt.Sprintf("question %d", id),
			"answer":   fmt.Sprintf("answer %d", id),
		})
	}
	isEnd := 0
	if len(data) == 0 || data[len(data)-1]["id"].(int64) >= int64(f.records) {
		isEnd = 1
	}
	if data == nil {
		data = []map[string]any{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    200,
		"message": map[string]any{"isEnd": isEnd, "data": data},
	})
}

type fakeWeCom struct {
	server      *httptest.Server
	tokenCalls  atomic.Int32
	ticketCalls atomic.Int32
	tokenBody   string
}

func newFakeWeCom(t *testing.T) *fakeWeCom {
	t.Helper()
	f := &fakeWeCom{tokenBody: `{"errcode":0,"access_token":"TOKEN"}`}
	mux := http.NewServeMux()
	mux.HandleFunc("/cgi-bin/gettoken", func(w http.ResponseWriter, _ *http.Request) {
		f.tokenCalls.Add(1)
		_, _ = io.WriteString(w, f.tokenBody)
	})
	mux.HandleFunc("/cgi-bin/get_jsapi_ticket", func(w http.ResponseWriter, _ *http.Request) {
		f.ticketCalls.Add(1)
		_, _ = io.WriteString(w, `{"errcode":0,"ticket":"TICKET"}`)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// --- Harness ---

type harness struct {
	handler http.Handler
	qiyu    *fakeQiyu
	wecom   *fakeWeCom
}

type harnessOpts struct {
	records      int
	noQiyuCreds  bool
	noWeComCreds bool
	noCorpSecret bool
	errorDetails bool
}

func newHarness(t *testing.T, opts harnessOpts) *harness {
	t.Helper()
	h := &harness{qiyu: newFakeQiyu(t, opts.records), wecom: newFakeWeCom(t)}

	qcfg := &qiyu.Config{
		AppKey:    "app-key",
		AppSecret: "app-secret",
		BaseURL:   h.qiyu.server.URL,
		Now:       func() time.Time { return time.Unix(1700000000, 0) },
	}
	if opts.noQiyuCreds {
		qcfg.AppKey, qcfg.AppSecret = "", ""
	}
	wcfg := &wecom.Config{CorpID: "ww-corp", CorpSecret: "corp-secret", BaseURL: h.wecom.server.URL}
	if opts.noWeComCreds {
		wcfg.CorpID, wcfg.CorpSecret = "", ""
	}
	if opts.noCorpSecret {
		wcfg.CorpSecret = ""
	}

	qc := qiyu.NewClient(qcfg)
	wc := wecom.NewClient(wcfg)

	srv := NewServer(
		knowledgeuc.New(qc),
		signatureuc.New(wc),
		probeuc.New(qc),
		healthuc.New(qc, wc),
		zap.NewNop(),
	).WithErrorDetails(opts.errorDetails)

	r := chi.NewRouter()
	srv.Register(r)
	h.handler = r
	return h
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return m
}

func assertCORS(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
	for k, v := range want {
		if got := rr.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

// --- CORS & methods ---

func TestPreflight(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	for _, path := range []string{"/api/knowledge", "/api/signature", "/api/test"} {
		t.Run(path, func(t *testing.T) {
			rr := h.do(http.MethodOptions, path, "")
			if rr.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rr.Code)
			}
			if rr.Body.Len() != 0 {
				t.Errorf("expected empty body, got %q", rr.Body.String())
			}
			assertCORS(t, rr)
		})
	}
	if h.qiyu.calls.Load() != 0 || h.wecom.tokenCalls.Load() != 0 {
		t.Error("preflight must not reach vendors")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	tests := []struct {
		method, path string
		withSuccess  bool
	}{
		{http.MethodPut, "/api/knowledge", true},
		{http.MethodDelete, "/api/knowledge", true},
		{http.MethodGet, "/api/signature", false},
		{http.MethodPost, "/api/test", true},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := h.do(tc.method, tc.path, "")
			if rr.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want 405", rr.Code)
			}
			assertCORS(t, rr)
			body := decode(t, rr)
			if _, ok := body["error"].(string); !ok {
				t.Errorf("missing error field: %v", body)
			}
			_, hasSuccess := body["success"]
			if hasSuccess != tc.withSuccess {
				t.Errorf("success field present = %v, want %v", hasSuccess, tc.withSuccess)
			}
		})
	}
}

// --- Knowledge ---

func TestListKnowledge_Aggregates(t *testing.T) {
	h := newHarness(t, harnessOpts{records: 2500})

	rr := h.do(http.MethodGet, "/api/knowledge", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	assertCORS(t, rr)

	var resp struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
		Count   int              `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Count != 2500 || len(resp.Data) != 2500 {
		t.Fatalf("success=%v count=%d len=%d", resp.Success, resp.Count, len(resp.Data))
	}
	if resp.Data[0]["question"] != "question 1" || resp.Data[2499]["id"] != float64(2500) {
		t.Errorf("unexpected ordering: first=%v last=%v", resp.Data[0], resp.Data[2499])
	}
	if got := h.qiyu.calls.Load(); got != 3 {
		t.Errorf("vendor calls = %d, want 3", got)
	}
}

func TestListKnowledge_EmptyIsArray(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	rr := h.do(http.MethodGet, "/api/knowledge", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"data":[]`) {
		t.Errorf("expected empty data array, got %s", rr.Body.String())
	}
}

func TestListKnowledge_UpstreamFailure(t *testing.T) {
	h := newHarness(t, harnessOpts{records: 10})
	h.qiyu.handler = func(w http.ResponseWriter, _ int64) {
		_, _ = io.WriteString(w, `{"code":14006,"message":"checksum error"}`)
	}

	rr := h.do(http.MethodGet, "/api/knowledge", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	body := decode(t, rr)
	if body["success"] != false {
		t.Errorf("success = %v", body["success"])
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "checksum error") {
		t.Errorf("error = %q", msg)
	}
	if _, ok := body["details"]; ok {
		t.Error("details must be absent unless enabled")
	}
}

func TestListKnowledge_DetailsWhenEnabled(t *testing.T) {
	h := newHarness(t, harnessOpts{records: 10, errorDetails: true})
	h.qiyu.handler = func(w http.ResponseWriter, _ int64) {
		w.WriteHeader(http.StatusBadGateway)
	}

	rr := h.do(http.MethodGet, "/api/knowledge", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if d, _ := decode(t, rr)["details"].(string); d == "" {
		t.Error("expected details when enabled")
	}
}

func TestListKnowledge_MissingConfig(t *testing.T) {
	h := newHarness(t, harnessOpts{records: 10, noQiyuCreds: true})

	rr := h.do(http.MethodGet, "/api/knowledge", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if h.qiyu.calls.Load() != 0 {
		t.Error("vendor must not be called without credentials")
	}
}

func TestSearchKnowledge_MissingQuery(t *testing.T) {
	h := newHarness(t, harnessOpts{records: 10})

	for _, body := range []string{"", `{}`, `{"query":""}`} {
		t.Run(body, func(t *testing.T) {
			rr := h.do(http.MethodPost, "/api/knowledge", body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			resp := decode(t, rr)
			if resp["success"] != false {
				t.Errorf("success = %v", resp["success"])
			}
		})
	}
	if h.qiyu.calls.Load() != 0 {
		t.Errorf("vendor called %d times for invalid query", h.qiyu.calls.Load())
	}
}

func TestSearchKnowledge_InvalidJSON(t *testing.T) {
	h := newHarness(t, harnessOpts{records: 10})

	rr := h.do(http.MethodPost, "/api/knowledge", `{"query":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSearchKnowledge_Results(t *testing.T) {
	h := newHarness(t, harnessOpts{records: 12})

	rr := h.do(http.MethodPost, "/api/knowledge", `{"query":"Question 1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Success bool             `json:"success"`
		Query   string           `json:"query"`
		Results []map[string]any `json:"results"`
		Total   int              `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Query != "Question 1" {
		t.Errorf("success=%v query=%q", resp.Success, resp.Query)
	}
	// Ids 1, 10, 11, 12 contain the query; the fifth slot goes to the first fuzzy match.
	if resp.Total != 5 || len(resp.Results) != 5 {
		t.Fatalf("total = %d, results = %d", resp.Total, len(resp.Results))
	}
	for i, id := range []float64{1, 10, 11, 12} {
		if resp.Results[i]["id"] != id || resp.Results[i]["matchType"] != "exact" {
			t.Errorf("result %d = %v", i, resp.Results[i])
		}
	}
	if resp.Results[4]["id"] != float64(2) || resp.Results[4]["matchType"] != "fuzzy" {
		t.Errorf("fifth result = %v", resp.Results[4])
	}
	first := resp.Results[0]
	if first["id"] != float64(1) || first["matchType"] != "exact" || first["score"] != float64(1) {
		t.Errorf("first result = %v", first)
	}
	if first["answer"] != "answer 1" {
		t.Errorf("record fields must be flattened: %v", first)
	}
}

// --- Signature ---

func TestSign_Success(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	rr := h.do(http.MethodPost, "/api/signature",
		`{"url":"https://example.com/page","noncestr":"abc","timestamp":1700000000}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	assertCORS(t, rr)

	body := decode(t, rr)
	want := signatureuc.GenerateSignature("TICKET", "abc", "1700000000", "https://example.com/page")
	if body["signature"] != want {
		t.Errorf("signature = %v, want %s", body["signature"], want)
	}
	if body["appId"] != "ww-corp" || body["noncestr"] != "abc" {
		t.Errorf("unexpected body: %v", body)
	}
	if body["timestamp"] != float64(1700000000) {
		t.Errorf("numeric timestamp must echo as a number, got %#v", body["timestamp"])
	}
	if h.wecom.tokenCalls.Load() != 1 || h.wecom.ticketCalls.Load() != 1 {
		t.Errorf("calls token=%d ticket=%d", h.wecom.tokenCalls.Load(), h.wecom.ticketCalls.Load())
	}
}

func TestSign_MissingParams(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	for _, body := range []string{
		`{"noncestr":"abc","timestamp":"1"}`,
		`{"url":"u","timestamp":"1"}`,
		`{"url":"u","noncestr":"abc"}`,
		``,
	} {
		rr := h.do(http.MethodPost, "/api/signature", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rr.Code)
		}
		if _, ok := decode(t, rr)["error"]; !ok {
			t.Errorf("body %q: missing error field", body)
		}
	}
	if got := h.wecom.tokenCalls.Load(); got != 0 {
		t.Errorf("token endpoint called %d times", got)
	}
}

func TestSign_MissingConfig(t *testing.T) {
	h := newHarness(t, harnessOpts{noWeComCreds: true})

	rr := h.do(http.MethodPost, "/api/signature", `{"url":"u","noncestr":"n","timestamp":"1"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if h.wecom.tokenCalls.Load() != 0 {
		t.Error("token endpoint must not be called without config")
	}
}

func TestSign_CorpIDWithoutSecret(t *testing.T) {
	h := newHarness(t, harnessOpts{records: 3, noCorpSecret: true})

	rr := h.do(http.MethodPost, "/api/signature", `{"url":"u","noncestr":"n","timestamp":"1"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	body := decode(t, rr)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "CORP_ID/CORP_SECRET") {
		t.Errorf("error = %v", body)
	}
	if h.wecom.tokenCalls.Load() != 0 {
		t.Error("token endpoint must not be called with half the credentials")
	}

	if rr := h.do(http.MethodGet, "/api/knowledge", ""); rr.Code != http.StatusOK {
		t.Errorf("knowledge must keep working, status = %d", rr.Code)
	}
}

func TestSign_MissingConfigBeforeBody(t *testing.T) {
	h := newHarness(t, harnessOpts{noWeComCreds: true})

	rr := h.do(http.MethodPost, "/api/signature", `{"url":`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if _, ok := decode(t, rr)["error"]; !ok {
		t.Error("missing error field")
	}
}

func TestSign_TokenFailure(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	h.wecom.tokenBody = `{"errcode":40013,"errmsg":"invalid corpid"}`

	rr := h.do(http.MethodPost, "/api/signature", `{"url":"u","noncestr":"n","timestamp":"1"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if h.wecom.ticketCalls.Load() != 0 {
		t.Error("ticket endpoint must not be called after token failure")
	}
	if msg, _ := decode(t, rr)["error"].(string); !strings.Contains(msg, "access token") {
		t.Errorf("error = %q", msg)
	}
}

// --- Probe ---

func TestProbe_Success(t *testing.T) {
	h := newHarness(t, harnessOpts{records: 3})

	rr := h.do(http.MethodGet, "/api/test", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decode(t, rr)
	if body["success"] != true || body["status"] != float64(200) {
		t.Errorf("success/status = %v/%v", body["success"], body["status"])
	}
	if body["timestamp"] != float64(1700000000) {
		t.Errorf("timestamp = %v", body["timestamp"])
	}
	if cs, _ := body["checksum"].(string); len(cs) != 40 {
		t.Errorf("checksum = %v", body["checksum"])
	}
	rb, _ := body["requestBody"].(map[string]any)
	if rb["mid"] != float64(0) || rb["size"] != float64(10) {
		t.Errorf("requestBody = %v", body["requestBody"])
	}
	resp, _ := body["response"].(map[string]any)
	if resp["code"] != float64(200) {
		t.Errorf("response not parsed: %v", body["response"])
	}
	if raw, _ := body["rawResponse"].(string); !strings.Contains(raw, `"code":200`) {
		t.Errorf("rawResponse = %q", raw)
	}
}

func TestProbe_NonJSONBody(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	h.qiyu.handler = func(w http.ResponseWriter, _ int64) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "denied")
	}

	rr := h.do(http.MethodGet, "/api/test", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := decode(t, rr)
	if body["success"] != false || body["status"] != float64(403) {
		t.Errorf("success/status = %v/%v", body["success"], body["status"])
	}
	resp, _ := body["response"].(map[string]any)
	if resp["rawResponse"] != "denied" {
		t.Errorf("response = %v", body["response"])
	}
}

func TestProbe_MissingConfig(t *testing.T) {
	h := newHarness(t, harnessOpts{noQiyuCreds: true})

	rr := h.do(http.MethodGet, "/api/test", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := decode(t, rr)
	if body["success"] != false {
		t.Errorf("success = %v", body["success"])
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Error("expected error message")
	}
	if h.qiyu.calls.Load() != 0 {
		t.Error("vendor must not be called without credentials")
	}
}

// --- Health & metrics ---

func TestHealthCheck(t *testing.T) {
	rr := newHarness(t, harnessOpts{}).do(http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := decode(t, rr)
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}

	rr = newHarness(t, harnessOpts{noWeComCreds: true}).do(http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	checks, _ := decode(t, rr)["checks"].(map[string]any)
	if checks["signature"] != "error" || checks["knowledge"] != "ok" {
		t.Errorf("checks = %v", checks)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rr := newHarness(t, harnessOpts{}).do(http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

// --- Passthrough ---

const oddRecordsPage = `{"code":200,"message":{"isEnd":1,"data":[` +
	`{"question":"q","answer":"a","zeta":1,"alpha":2},` +
	`{"id":"12","question":"refund","extra":{"k":[1,2]}}` +
	`]}}`

func TestListKnowledge_RecordsPassThroughUnchanged(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	h.qiyu.handler = func(w http.ResponseWriter, _ int64) {
		_, _ = io.WriteString(w, oddRecordsPage)
	}

	rr := h.do(http.MethodGet, "/api/knowledge", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	got := rr.Body.String()
	for _, want := range []string{
		`{"question":"q","answer":"a","zeta":1,"alpha":2}`,
		`{"id":"12","question":"refund","extra":{"k":[1,2]}}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("record %s not passed through in %s", want, got)
		}
	}
	if decode(t, rr)["count"] != float64(2) {
		t.Errorf("count = %v, want 2", decode(t, rr)["count"])
	}
}

func TestSearchKnowledge_OverlaysOriginalRecord(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	h.qiyu.handler = func(w http.ResponseWriter, _ int64) {
		_, _ = io.WriteString(w, oddRecordsPage)
	}

	rr := h.do(http.MethodPost, "/api/knowledge", `{"query":"refund"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	want := `{"id":"12","question":"refund","extra":{"k":[1,2]},"answer":"无内容","score":1,"matchType":"exact"}`
	if !strings.Contains(rr.Body.String(), want) {
		t.Errorf("expected %s in %s", want, rr.Body.String())
	}
}

// --- Errors ---

func TestHandleDomainError_UnexpectedKeepsMessage(t *testing.T) {
	srv := NewServer(nil, nil, nil, nil, zap.NewNop())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/knowledge", http.NoBody)
	srv.handleDomainError(rr, req, errors.New("disk on fire"), srv.writeKnowledgeError)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	body := decode(t, rr)
	if body["error"] != "disk on fire" || body["success"] != false {
		t.Errorf("unexpected body: %v", body)
	}
}

// --- Browser CORS ---

func TestCORS_BrowserPreflight(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	req := httptest.NewRequest(http.MethodOptions, "/api/signature", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rr.Body.String())
	}
	assertCORS(t, rr)
	if !slices.Contains(rr.Header().Values("Vary"), "Origin") {
		t.Errorf("Vary = %v, want Origin", rr.Header().Values("Vary"))
	}
}

func TestCORS_CrossOriginRequest(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	req := httptest.NewRequest(http.MethodGet, "/api/knowledge", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	assertCORS(t, rr)
}

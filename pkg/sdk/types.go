package kbproxy

import (
	"encoding/json"

	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
	domsig "github.com/kailas-cloud/kbproxy/internal/domain/signature"
)

// Record is one knowledge-base entry. Extra holds vendor fields the proxy does not interpret.
type Record struct {
	ID       int64
	Question string
	Answer   string
	Extra    map[string]json.RawMessage
}

// Match is a search hit. Exact is false for character-overlap hits.
type Match struct {
	Record
	Score float64
	Exact bool
}

// Signature is a signed JS-SDK config.
type Signature struct {
	Signature string
	NonceStr  string
	Timestamp string
	AppID     string
}

// ProbeResult describes one diagnostic call. Body is nil when the vendor did not answer JSON.
type ProbeResult struct {
	OK        bool
	Status    int
	Timestamp int64
	Checksum  string
	URL       string
	Body      json.RawMessage
	Raw       string
	Err       error
}

func recordFromDomain(r domknow.Record) Record {
	return Record{ID: r.ID, Question: r.Question, Answer: r.Answer, Extra: r.Extra}
}

func matchFromDomain(m domknow.MatchResult) Match {
	return Match{
		Record: recordFromDomain(m.Record),
		Score:  m.Score,
		Exact:  m.MatchType == domknow.MatchExact,
	}
}

func signatureFromDomain(r domsig.Result) Signature {
	return Signature{
		Signature: r.Signature,
		NonceStr:  r.NonceStr,
		Timestamp: r.Timestamp.String(),
		AppID:     r.AppID,
	}
}

func probeFromDomain(p domknow.ProbeReport) ProbeResult {
	return ProbeResult{
		OK:        p.OK,
		Status:    p.Status,
		Timestamp: p.Timestamp,
		Checksum:  p.Checksum,
		URL:       p.URL,
		Body:      p.Body,
		Raw:       p.Raw,
		Err:       p.Err,
	}
}

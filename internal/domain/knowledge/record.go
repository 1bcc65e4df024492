// Package knowledge holds the knowledge-base record model and match results.
package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Reserved JSON keys owned by Record; everything else is vendor passthrough.
const (
	keyID        = "id"
	keyQuestion  = "question"
	keyAnswer    = "answer"
	keyScore     = "score"
	keyMatchType = "matchType"
)

// Record is a single knowledge-base entry as returned by the vendor.
// A decoded record re-encodes with its fields and their order unchanged;
// ID, Question and Answer are views used for paging and matching.
// Other fields are also exposed in Extra.
type Record struct {
	ID       int64
	Question string
	Answer   string
	Extra    map[string]json.RawMessage

	raw   json.RawMessage
	rawID json.RawMessage
}

// UnmarshalJSON decodes a vendor record. Only a non-object is rejected;
// unusual id, question or answer values are tolerated and kept verbatim.
func (r *Record) UnmarshalJSON(data []byte) error {
	members, err := objectMembers(data)
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	rec := Record{raw: append(json.RawMessage(nil), bytes.TrimSpace(data)...)}
	for _, m := range members {
		switch m.key {
		case keyID:
			rec.rawID = m.value
			rec.ID = parseID(m.value)
		case keyQuestion:
			rec.Question = text(m.value)
		case keyAnswer:
			rec.Answer = text(m.value)
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]json.RawMessage)
			}
			rec.Extra[m.key] = m.value
		}
	}

	*r = rec
	return nil
}

// MarshalJSON returns a decoded record unchanged. A record built in code
// is encoded as id, question, answer, then Extra in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return encodeMembers(r.members())
}

// Key identifies the record when deduplicating matches. Decoded records
// compare by their literal id, so records without an id share one key.
func (r Record) Key() string {
	if r.raw != nil {
		return string(r.rawID)
	}
	return strconv.FormatInt(r.ID, 10)
}

func (r Record) members() []member {
	if r.raw != nil {
		members, err := objectMembers(r.raw)
		if err == nil {
			return members
		}
	}

	out := make([]member, 0, len(r.Extra)+3)
	out = append(out,
		member{key: keyID, value: json.RawMessage(strconv.FormatInt(r.ID, 10))},
		member{key: keyQuestion, value: mustString(r.Question)},
		member{key: keyAnswer, value: mustString(r.Answer)},
	)
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, member{key: k, value: r.Extra[k]})
	}
	return out
}

// parseID reads the paging cursor from an id of any JSON kind.
// Non-integers are truncated; anything unreadable is 0.
func parseID(raw json.RawMessage) int64 {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0
	}

	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = t
	default:
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}

// text is the matchable text of a JSON value: strings as-is, falsy values empty,
// anything else its literal JSON.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	switch string(raw) {
	case "", "null", "false", "0":
		return ""
	}
	return string(raw)
}

// member is one key/value pair of a JSON object, kept in document order.
type member struct {
	key   string
	value json.RawMessage
}

var errNotObject = errors.New("not an object")

// objectMembers splits a JSON object into its members without reordering them.
func objectMembers(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by caller
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err //nolint:wrapcheck // wrapped by caller
		}
		out = append(out, member{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	return out, nil
}

// setMember replaces key in place, or appends it when absent.
func setMember(members []member, key string, value json.RawMessage) []member {
	for i := range members {
		if members[i].key == key {
			members[i].value = value
			return members
		}
	}
	return append(members, member{key: key, value: value})
}

func encodeMembers(members []member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", m.key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(m.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func mustString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// Page is one page of the vendor listing.
type Page struct {
	Records []Record
	IsEnd   int // non-zero once the vendor has no more pages
}

// LastID returns the id of the last record, the cursor for the next page.
func (p *Page) LastID() (int64, bool) {
	if len(p.Records) == 0 {
		return 0, false
	}
	return p.Records[len(p.Records)-1].ID, true
}

package knowledge

import (
	"encoding/json"
	"strconv"
)

// MatchType tells how a record matched the query.
type MatchType string

const (
	// MatchExact is a substring match in either direction.
	MatchExact MatchType = "exact"
	// MatchFuzzy is a character-overlap match.
	MatchFuzzy MatchType = "fuzzy"
)

// Placeholders shown to clients when a record has no question or answer.
const (
	UntitledQuestion = "无标题"
	EmptyAnswer      = "无内容"
)

// MatchResult is a record annotated with its match score.
type MatchResult struct {
	Record
	Score     float64
	MatchType MatchType

	untitled bool
	noAnswer bool
}

// NewMatchResult creates a match result, filling placeholders for an empty question or answer.
func NewMatchResult(rec Record, score float64, mt MatchType) MatchResult {
	m := MatchResult{Record: rec, Score: score, MatchType: mt}
	if rec.Question == "" {
		m.Question = UntitledQuestion
		m.untitled = true
	}
	if rec.Answer == "" {
		m.Answer = EmptyAnswer
		m.noAnswer = true
	}
	return m
}

// MarshalJSON writes the record's own fields in their original order, then
// score and matchType. Placeholders replace only an empty question or answer.
func (m MatchResult) MarshalJSON() ([]byte, error) {
	members := m.members()
	if m.untitled {
		members = setMember(members, keyQuestion, mustString(m.Question))
	}
	if m.noAnswer {
		members = setMember(members, keyAnswer, mustString(m.Answer))
	}
	members = setMember(members, keyScore, json.RawMessage(strconv.FormatFloat(m.Score, 'g', -1, 64)))
	members = setMember(members, keyMatchType, mustString(string(m.MatchType)))
	return encodeMembers(members)
}

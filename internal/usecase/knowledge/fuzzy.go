package knowledge

import (
	"sort"
	"strings"
	"unicode/utf8"

	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
)

// fuzzyThreshold is the minimum character-overlap score for a fuzzy hit.
const fuzzyThreshold = 0.1

// FuzzyMatch ranks records against query in two passes.
//
// Exact pass: a record matches when its question contains the query, the query contains its
// question, or its answer contains the query (all lowercased). Exact hits score 1.0; when there
// are at least limit of them the first limit are returned in record order.
//
// Fuzzy pass: every other record scores
// (query characters present in "question answer") / max(len(query), len(question answer)),
// counting repeated query characters each time. Hits above 0.1 are kept.
//
// Results are stably sorted by descending score and cut to limit.
//
// Only an empty query yields nothing. A blank query trims to "", which every
// question contains, so it returns the first limit records as exact hits.
// Records are told apart by their literal id.
func FuzzyMatch(query string, records []domknow.Record, limit int) []domknow.MatchResult {
	if query == "" || len(records) == 0 || limit <= 0 {
		return []domknow.MatchResult{}
	}
	q := strings.ToLower(strings.TrimSpace(query))

	results := make([]domknow.MatchResult, 0, limit)
	seen := make(map[string]struct{})

	for _, rec := range records {
		question := strings.ToLower(rec.Question)
		answer := strings.ToLower(rec.Answer)
		if strings.Contains(question, q) || strings.Contains(q, question) || strings.Contains(answer, q) {
			results = append(results, domknow.NewMatchResult(rec, 1.0, domknow.MatchExact))
			seen[rec.Key()] = struct{}{}
		}
	}
	if len(results) >= limit {
		return results[:limit]
	}

	queryChars := []rune(q)
	for _, rec := range records {
		if _, ok := seen[rec.Key()]; ok {
			continue
		}
		target := strings.ToLower(rec.Question) + " " + strings.ToLower(rec.Answer)
		if score := overlapScore(queryChars, target); score > fuzzyThreshold {
			results = append(results, domknow.NewMatchResult(rec, score, domknow.MatchFuzzy))
			seen[rec.Key()] = struct{}{}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func overlapScore(queryChars []rune, target string) float64 {
	hits := 0
	for _, ch := range queryChars {
		if strings.ContainsRune(target, ch) {
			hits++
		}
	}
	denom := max(len(queryChars), utf8.RuneCountInString(target))
	return float64(hits) / float64(denom)
}

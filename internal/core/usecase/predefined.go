package usecase

import (
	"strings"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// PredefinedEntry is one curated question/answer pair. Evidence lists the
// quote IDs backing the answer; entries whose evidence does not resolve in
// the current snapshot are skipped so the integrity invariant holds.
type PredefinedEntry struct {
	Question string
	Answer   string
	Evidence []string
}

// PredefinedMatcher matches questions against the curated table. Matching is
// exact after normalization: case-insensitive, whitespace-collapsed. No fuzzy
// matching, so a near-miss falls through to grounded strategies instead of
// returning a wrong curated answer.
type PredefinedMatcher struct {
	byQuestion map[string]PredefinedEntry
}

func NewPredefinedMatcher(entries []PredefinedEntry) *PredefinedMatcher {
	byQuestion := make(map[string]PredefinedEntry, len(entries))
	for _, e := range entries {
		byQuestion[normalizeQuestion(e.Question)] = e
	}
	return &PredefinedMatcher{byQuestion: byQuestion}
}

// Match returns the curated answer for the question, if any. Evidence is
// filtered to quote IDs present in the snapshot; an entry left without valid
// evidence signals no match.
func (m *PredefinedMatcher) Match(snap *domain.Snapshot, question string) (*domain.Answer, bool) {
	entry, ok := m.byQuestion[normalizeQuestion(question)]
	if !ok {
		return nil, false
	}

	evidence := make([]string, 0, len(entry.Evidence))
	for _, id := range entry.Evidence {
		if _, exists := snap.Records[id]; exists {
			evidence = append(evidence, id)
		}
	}
	if len(evidence) == 0 {
		return nil, false
	}

	return &domain.Answer{
		Text:     entry.Answer,
		Strategy: domain.StrategyPredefined,
		Evidence: evidence,
	}, true
}

func normalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

package usecase

import (
	"testing"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

func TestPredefinedMatchNormalizesQuestion(t *testing.T) {
	snap := testSnapshot()
	matcher := NewPredefinedMatcher([]PredefinedEntry{
		{
			Question: "What is the business name for MYJADEQT001?",
			Answer:   "Business Name for MYJADEQT001: Ja Assure IN",
			Evidence: []string{"MYJADEQT001"},
		},
	})

	answer, ok := matcher.Match(snap, "  what IS   the business name for myjadeqt001?  ")
	if !ok {
		t.Fatal("expected match after normalization")
	}
	if answer.Strategy != domain.StrategyPredefined {
		t.Errorf("Strategy = %q", answer.Strategy)
	}
	if len(answer.Evidence) != 1 || answer.Evidence[0] != "MYJADEQT001" {
		t.Errorf("Evidence = %v", answer.Evidence)
	}
}

func TestPredefinedNearMissDoesNotMatch(t *testing.T) {
	snap := testSnapshot()
	matcher := NewPredefinedMatcher([]PredefinedEntry{
		{Question: "What is the business name for MYJADEQT001?", Answer: "x", Evidence: []string{"MYJADEQT001"}},
	})

	if _, ok := matcher.Match(snap, "What is the business name of MYJADEQT001?"); ok {
		t.Fatal("near-miss question should not match")
	}
}

func TestPredefinedStaleEvidenceFallsThrough(t *testing.T) {
	snap := testSnapshot()
	matcher := NewPredefinedMatcher([]PredefinedEntry{
		{Question: "stale question?", Answer: "stale answer", Evidence: []string{"MYJADEQT999"}},
	})

	if _, ok := matcher.Match(snap, "stale question?"); ok {
		t.Fatal("entry whose evidence is absent from the snapshot must not match")
	}
}

func TestPredefinedFiltersPartiallyStaleEvidence(t *testing.T) {
	snap := testSnapshot()
	matcher := NewPredefinedMatcher([]PredefinedEntry{
		{Question: "mixed evidence?", Answer: "answer", Evidence: []string{"MYJADEQT999", "MYJADEQT002"}},
	})

	answer, ok := matcher.Match(snap, "mixed evidence?")
	if !ok {
		t.Fatal("expected match with at least one valid evidence id")
	}
	if len(answer.Evidence) != 1 || answer.Evidence[0] != "MYJADEQT002" {
		t.Errorf("Evidence = %v, want only the valid id", answer.Evidence)
	}
}

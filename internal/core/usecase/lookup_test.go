package usecase

import (
	"strings"
	"testing"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

func TestStructuredLookupQuoteIDField(t *testing.T) {
	snap := testSnapshot()
	lookup := NewStructuredLookup(NewFormatter())

	answer, intent, ok := lookup.Resolve(snap, "What is the business name of MYJADEQT001?")
	if !ok {
		t.Fatal("expected structured lookup match")
	}
	if answer.Text != "Business Name for Ja Assure IN (MYJADEQT001): Ja Assure IN" {
		t.Errorf("Text = %q", answer.Text)
	}
	if answer.Strategy != domain.StrategyDeterministic {
		t.Errorf("Strategy = %q", answer.Strategy)
	}
	if len(answer.Evidence) != 1 || answer.Evidence[0] != "MYJADEQT001" {
		t.Errorf("Evidence = %v", answer.Evidence)
	}
	if intent == nil || intent.Operation != domain.OpLookup || intent.QuoteID != "MYJADEQT001" {
		t.Errorf("intent = %+v", intent)
	}
}

func TestStructuredLookupLowercaseQuoteID(t *testing.T) {
	snap := testSnapshot()
	lookup := NewStructuredLookup(NewFormatter())

	answer, _, ok := lookup.Resolve(snap, "what is the number of cameras for myjadeqt003?")
	if !ok {
		t.Fatal("expected structured lookup match")
	}
	if !strings.Contains(answer.Text, "Number Of Cameras") || !strings.HasSuffix(answer.Text, ": 4") {
		t.Errorf("Text = %q", answer.Text)
	}
	if len(answer.Evidence) != 1 || answer.Evidence[0] != "MYJADEQT003" {
		t.Errorf("Evidence = %v", answer.Evidence)
	}
}

func TestStructuredLookupUnknownQuoteIDFallsThrough(t *testing.T) {
	snap := testSnapshot()
	lookup := NewStructuredLookup(NewFormatter())

	if _, _, ok := lookup.Resolve(snap, "what is the business name of MYJADEQT999?"); ok {
		t.Fatal("unknown quote id must fall through")
	}
}

func TestStructuredLookupNoFieldMentionFallsThrough(t *testing.T) {
	snap := testSnapshot()
	lookup := NewStructuredLookup(NewFormatter())

	if _, _, ok := lookup.Resolve(snap, "tell me everything about MYJADEQT001"); ok {
		t.Fatal("question without a field mention must fall through")
	}
}

func TestStructuredLookupPrefersLongestFieldName(t *testing.T) {
	snap := testSnapshot()
	addTestRecord(snap, "MYJADEQT011", "Business 11", "Owner 11", map[string]map[string]string{
		"alarm": {
			"alarm_label":      "Yes",
			"alarm_type_label": "Monitored",
		},
	})
	lookup := NewStructuredLookup(NewFormatter())

	answer, intent, ok := lookup.Resolve(snap, "what is the alarm type of MYJADEQT011?")
	if !ok {
		t.Fatal("expected structured lookup match")
	}
	if intent.Field != "alarm_type_label" {
		t.Errorf("Field = %q, want alarm_type_label", intent.Field)
	}
	if !strings.HasSuffix(answer.Text, ": Monitored") {
		t.Errorf("Text = %q", answer.Text)
	}
}

func TestStructuredLookupDeterministicAcrossRepeats(t *testing.T) {
	snap := testSnapshot()
	lookup := NewStructuredLookup(NewFormatter())

	first, _, ok := lookup.Resolve(snap, "what is the business name of MYJADEQT002?")
	if !ok {
		t.Fatal("expected structured lookup match")
	}
	for i := 0; i < 5; i++ {
		again, _, ok := lookup.Resolve(snap, "what is the business name of MYJADEQT002?")
		if !ok {
			t.Fatal("expected repeated structured lookup match")
		}
		if again.Text != first.Text {
			t.Fatalf("non-deterministic result: %q vs %q", again.Text, first.Text)
		}
	}
}

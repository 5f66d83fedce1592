package usecase

import (
	"reflect"
	"strings"
	"testing"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

func TestAnalyticalCountCCTVInstalled(t *testing.T) {
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	answer, intent, ok := resolver.Resolve(snap, "How many proposals have CCTV installed?")
	if !ok {
		t.Fatal("expected analytical match")
	}
	if answer.Text != "8 proposal(s) match the criteria." {
		t.Errorf("Text = %q", answer.Text)
	}
	if answer.Strategy != domain.StrategyDeterministic {
		t.Errorf("Strategy = %q", answer.Strategy)
	}
	if len(answer.Evidence) != 8 {
		t.Fatalf("len(Evidence) = %d, want 8", len(answer.Evidence))
	}
	if intent == nil || intent.FilterField != "do_you_have_cctv_installed_label" || intent.FilterValue != "Yes" {
		t.Errorf("intent = %+v", intent)
	}
}

func TestAnalyticalDeterministicAcrossRepeats(t *testing.T) {
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	first, _, ok := resolver.Resolve(snap, "how many proposals have cctv?")
	if !ok {
		t.Fatal("expected analytical match")
	}
	for i := 0; i < 5; i++ {
		again, _, ok := resolver.Resolve(snap, "how many proposals have cctv?")
		if !ok {
			t.Fatal("expected repeated analytical match")
		}
		if again.Text != first.Text || !reflect.DeepEqual(again.Evidence, first.Evidence) {
			t.Fatalf("non-deterministic result: %+v vs %+v", again, first)
		}
	}
}

func TestAnalyticalEvidenceSortedAscending(t *testing.T) {
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	answer, _, ok := resolver.Resolve(snap, "how many proposals have cctv installed?")
	if !ok {
		t.Fatal("expected analytical match")
	}
	for i := 1; i < len(answer.Evidence); i++ {
		if answer.Evidence[i-1] >= answer.Evidence[i] {
			t.Fatalf("evidence not in ascending order: %v", answer.Evidence)
		}
	}
	for _, id := range answer.Evidence {
		if _, exists := snap.Records[id]; !exists {
			t.Errorf("evidence %q not in snapshot", id)
		}
	}
}

func TestAnalyticalNegationFlipsFilter(t *testing.T) {
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	answer, intent, ok := resolver.Resolve(snap, "how many proposals don't have cctv installed?")
	if !ok {
		t.Fatal("expected analytical match")
	}
	if answer.Text != "2 proposal(s) match the criteria." {
		t.Errorf("Text = %q", answer.Text)
	}
	if intent.FilterValue != "No" {
		t.Errorf("FilterValue = %q, want No", intent.FilterValue)
	}
}

func TestAnalyticalListIncludesBusinessNames(t *testing.T) {
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	answer, _, ok := resolver.Resolve(snap, "list all proposals without cctv")
	if !ok {
		t.Fatal("expected analytical match")
	}
	if !strings.Contains(answer.Text, "Business 09 (MYJADEQT009)") {
		t.Errorf("Text = %q, missing business name line", answer.Text)
	}
	if len(answer.Evidence) != 2 {
		t.Errorf("Evidence = %v", answer.Evidence)
	}
}

func TestAnalyticalExists(t *testing.T) {
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	answer, _, ok := resolver.Resolve(snap, "are there any proposals with alarm?")
	if !ok {
		t.Fatal("expected analytical match")
	}
	if !strings.HasPrefix(answer.Text, "Yes") {
		t.Errorf("Text = %q", answer.Text)
	}
}

func TestAnalyticalUnknownConditionFallsThrough(t *testing.T) {
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	if _, _, ok := resolver.Resolve(snap, "how many proposals mention fire sprinklers?"); ok {
		t.Fatal("unidentifiable condition must not produce an analytical answer")
	}
}

func TestAnalyticalNonCountQuestionFallsThrough(t *testing.T) {
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	if _, _, ok := resolver.Resolve(snap, "tell me about the cctv setup at Ja Assure IN"); ok {
		t.Fatal("question without count/list/exists signal must fall through")
	}
}

func TestAnalyticalQuoteIDQuestionFallsThrough(t *testing.T) {
	// Record 009 has no CCTV; a corpus-wide scan would answer "Yes" from the
	// other records. Questions about one record are not analytical.
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	if _, _, ok := resolver.Resolve(snap, "Does MYJADEQT009 have CCTV installed?"); ok {
		t.Fatal("quote-id question must not be answered by a corpus-wide scan")
	}
	if _, _, ok := resolver.Resolve(snap, "does myjadeqt009 have cctv installed?"); ok {
		t.Fatal("quote-id detection must be case-insensitive")
	}
}

func TestAnalyticalNamedBusinessQuestionFallsThrough(t *testing.T) {
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	if _, _, ok := resolver.Resolve(snap, "does Ja Assure IN have an alarm?"); ok {
		t.Fatal("named-business question must not be answered by a corpus-wide scan")
	}
	if _, _, ok := resolver.Resolve(snap, "does soh boon have cctv?"); ok {
		t.Fatal("named-person question must not be answered by a corpus-wide scan")
	}
}

func TestAnalyticalFreeFormLabelFallsThrough(t *testing.T) {
	// "industry id" matches a schema label but has no yes/no vocabulary;
	// scanning it for "Yes" would produce a fabricated zero count.
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	if _, _, ok := resolver.Resolve(snap, "how many proposals have industry id?"); ok {
		t.Fatal("free-form label must not produce an analytical answer")
	}
}

func TestAnalyticalZeroMatchesFallsThrough(t *testing.T) {
	// Every record has an alarm, so the negated filter matches nothing. An
	// answer with no evidence is not allowed; later strategies get the turn.
	snap := testSnapshot()
	resolver := NewAnalyticalResolver(NewFormatter())

	if _, _, ok := resolver.Resolve(snap, "how many proposals don't have alarm?"); ok {
		t.Fatal("zero-match scan must fall through instead of answering without evidence")
	}
}

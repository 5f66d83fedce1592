package usecase

import (
	"strings"
	"testing"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

func TestCountUsesFixedTemplate(t *testing.T) {
	f := NewFormatter()
	if got := f.Count(8, nil); got != "8 proposal(s) match the criteria." {
		t.Errorf("Count(8) = %q", got)
	}
	if got := f.Count(0, nil); got != "0 proposal(s) match the criteria." {
		t.Errorf("Count(0) = %q", got)
	}
}

func TestCountWithNamesAppendsList(t *testing.T) {
	f := NewFormatter()
	got := f.Count(2, []string{"Ja Assure IN (MYJADEQT001)", "Business 02 (MYJADEQT002)"})
	if !strings.HasPrefix(got, "2 proposal(s) match the criteria. Matching businesses:") {
		t.Errorf("Count() = %q", got)
	}
	if !strings.Contains(got, "- Ja Assure IN (MYJADEQT001)") {
		t.Errorf("Count() missing name line: %q", got)
	}
}

func TestLookupFormat(t *testing.T) {
	f := NewFormatter()
	got := f.Lookup("Business Name", "Ja Assure IN (MYJADEQT001)", "Ja Assure IN")
	want := "Business Name for Ja Assure IN (MYJADEQT001): Ja Assure IN"
	if got != want {
		t.Errorf("Lookup() = %q, want %q", got, want)
	}
}

func TestListEmptyFallsBackToZeroCount(t *testing.T) {
	f := NewFormatter()
	if got := f.List(nil); got != "0 proposal(s) match the criteria." {
		t.Errorf("List(nil) = %q", got)
	}
}

func TestRefusalTexts(t *testing.T) {
	f := NewFormatter()
	tests := []struct {
		reason domain.RefusalReason
		want   string
	}{
		{domain.RefusalBelowThreshold, "Data not available in proposal records."},
		{domain.RefusalNotFound, "Data not available in proposal records."},
		{domain.RefusalInconsistent, "Data not available in proposal records."},
		{domain.RefusalOutOfScope, "This question is outside the scope of the proposal records."},
	}
	for _, tt := range tests {
		answer := f.Refusal(tt.reason)
		if answer.Text != tt.want {
			t.Errorf("Refusal(%s).Text = %q, want %q", tt.reason, answer.Text, tt.want)
		}
		if answer.Strategy != domain.StrategyRefusal {
			t.Errorf("Refusal(%s).Strategy = %q", tt.reason, answer.Strategy)
		}
		if answer.Reason != tt.reason {
			t.Errorf("Refusal(%s).Reason = %q", tt.reason, answer.Reason)
		}
		if len(answer.Evidence) != 0 {
			t.Errorf("Refusal(%s) carries evidence %v", tt.reason, answer.Evidence)
		}
	}
}

func TestFieldLabel(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"business_name_label", "Business Name"},
		{"do_you_have_cctv_installed_label", "Do You Have Cctv Installed"},
		{"risk_location", "Risk Location"},
	}
	for _, tt := range tests {
		if got := FieldLabel(tt.field); got != tt.want {
			t.Errorf("FieldLabel(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestSanitizeLLMOutput(t *testing.T) {
	in := "## Answer\n**Ja Assure IN** has `8` cameras.\n\n\n\n<b>Done</b>"
	got := SanitizeLLMOutput(in)
	for _, banned := range []string{"**", "`", "##", "<b>", "</b>"} {
		if strings.Contains(got, banned) {
			t.Errorf("sanitized output still contains %q: %q", banned, got)
		}
	}
	if !strings.Contains(got, "Ja Assure IN has 8 cameras.") {
		t.Errorf("sanitized output lost content: %q", got)
	}
}

package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// Formatter renders resolved results into final answer text. Counts use a
// fixed phrase template, lookups carry the field's human label and the
// record's business identifier, refusals carry no business data.
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

const countTemplate = "%d proposal(s) match the criteria."

func (f *Formatter) Count(n int, names []string) string {
	text := fmt.Sprintf(countTemplate, n)
	if len(names) == 0 {
		return text
	}
	lines := make([]string, 0, len(names)+1)
	lines = append(lines, text+" Matching businesses:")
	for _, name := range names {
		lines = append(lines, "- "+name)
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) Lookup(fieldLabel, businessIdent, value string) string {
	return fmt.Sprintf("%s for %s: %s", fieldLabel, businessIdent, value)
}

func (f *Formatter) List(items []string) string {
	if len(items) == 0 {
		return fmt.Sprintf(countTemplate, 0)
	}
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, fmt.Sprintf("Found %d matching proposal(s):", len(items)))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) Exists(subject string, ok bool) string {
	if ok {
		return fmt.Sprintf("Yes, %s.", subject)
	}
	return fmt.Sprintf("No, %s is not the case.", subject)
}

// Refusal maps a reason category to fixed explanation text. The text never
// includes business data.
func (f *Formatter) Refusal(reason domain.RefusalReason) *domain.Answer {
	var text string
	switch reason {
	case domain.RefusalInputInvalid:
		text = "The question is empty or malformed."
	case domain.RefusalAmbiguous:
		text = "The question refers to a previous result, but there is no single prior result to bind it to. Please restate the business or quote ID."
	case domain.RefusalUpstreamError:
		text = "The answering service is temporarily unavailable. Please retry."
	case domain.RefusalOutOfScope:
		text = "This question is outside the scope of the proposal records."
	default:
		// below_confidence_threshold, not_found, inconsistent_evidence
		text = "Data not available in proposal records."
	}
	return &domain.Answer{
		Text:     text,
		Strategy: domain.StrategyRefusal,
		Evidence: []string{},
		Reason:   reason,
	}
}

// FieldLabel converts a stored field name into its human label.
func FieldLabel(field string) string {
	label := strings.TrimSuffix(strings.ToLower(field), "_label")
	label = strings.ReplaceAll(label, "_", " ")
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var (
	htmlTagRE    = regexp.MustCompile(`<[^>]*>`)
	boldRE       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRE     = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*`)
	backtickRE   = regexp.MustCompile("`([^`]*)`")
	headerRE     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	multiBlankRE = regexp.MustCompile(`\n{3,}`)
)

// SanitizeLLMOutput strips markdown and HTML artifacts from generated text so
// only plain text reaches the answer.
func SanitizeLLMOutput(text string) string {
	out := htmlTagRE.ReplaceAllString(text, "")
	out = boldRE.ReplaceAllString(out, "$1")
	out = italicRE.ReplaceAllString(out, " $1")
	out = backtickRE.ReplaceAllString(out, "$1")
	out = headerRE.ReplaceAllString(out, "")
	out = multiBlankRE.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

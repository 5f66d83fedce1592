package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
	"github.com/SohamB4746Y/ja-assure-rag/internal/core/ports"
)

// ParseOutcome is the tagged result of intent parsing.
type ParseOutcome int

const (
	ParseNoMatch ParseOutcome = iota
	ParseMatched
	ParseAmbiguous
	ParseOutOfScope
	ParseFailed
)

var quoteIDPattern = regexp.MustCompile(`(?i)MYJADEQT\d+`)

var anaphoricTokens = []string{"their", "them", "they", "those", "these", "the above", "the names"}

// Questions about data the corpus does not hold short-circuit to a refusal
// before any LLM round trip.
var outOfScopeIndicators = []string{
	"singapore", "indonesia", "thailand", "philippines", "vietnam",
	"predict", "forecast", "recommend", "should i", "which is better",
	"benchmark", "market rate", "credit score", "credit rating",
	"who approved", "underwriter", "actuary",
	"monthly premium", "annual premium", "calculate premium",
}

// IntentParser extracts a structured intent from free text. The LLM is used
// as a structured-extraction oracle behind a strict output contract: any
// output outside the known vocabularies is treated as no-match, never passed
// through. Anaphoric references are resolved deterministically against the
// session history before the LLM is consulted.
type IntentParser struct {
	extractor     ports.IntentExtractor
	historyWindow int
}

func NewIntentParser(extractor ports.IntentExtractor, historyWindow int) *IntentParser {
	if historyWindow <= 0 {
		historyWindow = 5
	}
	return &IntentParser{extractor: extractor, historyWindow: historyWindow}
}

func (p *IntentParser) Parse(
	ctx context.Context,
	snap *domain.Snapshot,
	question string,
	history []domain.ConversationTurn,
) (*domain.ResolvedIntent, ParseOutcome, error) {
	q := strings.ToLower(strings.TrimSpace(question))

	if isOutOfScope(q) {
		return nil, ParseOutOfScope, nil
	}

	if hasAnaphoricReference(q) {
		intent, outcome := p.resolveFollowup(q, history)
		if outcome != ParseNoMatch {
			return intent, outcome, nil
		}
	}

	prompt := buildIntentPrompt(snap, question, p.recent(history))
	raw, err := p.extractor.ExtractIntentJSON(ctx, prompt)
	if err != nil {
		return nil, ParseFailed, fmt.Errorf("extract intent: %w", err)
	}

	intent, ok := p.validate(snap, question, raw)
	if !ok {
		return nil, ParseNoMatch, nil
	}
	return intent, ParseMatched, nil
}

func (p *IntentParser) recent(history []domain.ConversationTurn) []domain.ConversationTurn {
	if len(history) <= p.historyWindow {
		return history
	}
	return history[len(history)-p.historyWindow:]
}

// resolveFollowup binds an anaphoric question to prior turns without the LLM.
// Exactly one distinct candidate binding in the lookback window binds; zero
// or several signal ambiguity.
func (p *IntentParser) resolveFollowup(q string, history []domain.ConversationTurn) (*domain.ResolvedIntent, ParseOutcome) {
	type binding struct {
		filterField string
		filterValue string
		entity      string
		quoteID     string
	}

	seen := make(map[binding]domain.ResolvedIntent)
	for _, turn := range p.recent(history) {
		if turn.Intent == nil || !turn.Intent.HasFilter() {
			continue
		}
		key := binding{
			filterField: turn.Intent.FilterField,
			filterValue: turn.Intent.FilterValue,
			entity:      turn.Intent.Entity,
			quoteID:     turn.Intent.QuoteID,
		}
		seen[key] = *turn.Intent
	}

	if len(seen) != 1 {
		return nil, ParseAmbiguous
	}

	var inherited domain.ResolvedIntent
	for _, intent := range seen {
		inherited = intent
	}

	op := domain.OpList
	for _, s := range countSignals {
		if strings.Contains(q, s) {
			op = domain.OpCount
			break
		}
	}

	return &domain.ResolvedIntent{
		Operation:   op,
		QuoteID:     inherited.QuoteID,
		Entity:      inherited.Entity,
		Field:       "business_name_label",
		FilterField: inherited.FilterField,
		FilterValue: inherited.FilterValue,
		WantsNames:  true,
	}, ParseMatched
}

type intentWire struct {
	Operation   string `json:"operation"`
	QuoteID     string `json:"quote_id"`
	Entity      string `json:"entity"`
	Field       string `json:"field"`
	FilterField string `json:"filter_field"`
	FilterValue string `json:"filter_value"`
}

// validate enforces the output contract: operation from the known vocabulary,
// fields resolvable against schema labels, entity present in the question
// itself (guards against context bleed from history).
func (p *IntentParser) validate(snap *domain.Snapshot, question, raw string) (*domain.ResolvedIntent, bool) {
	var wire intentWire
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &wire); err != nil {
		return nil, false
	}

	op := domain.Operation(strings.ToLower(strings.TrimSpace(wire.Operation)))
	if !domain.ValidOperation(op) {
		return nil, false
	}

	intent := domain.ResolvedIntent{Operation: op}

	if id := quoteIDPattern.FindString(question); id != "" {
		intent.QuoteID = strings.ToUpper(id)
	} else if wire.QuoteID != "" {
		id := strings.ToUpper(strings.TrimSpace(wire.QuoteID))
		if quoteIDPattern.MatchString(id) && strings.Contains(strings.ToUpper(question), id) {
			intent.QuoteID = id
		}
	}

	if wire.Entity != "" && strings.Contains(strings.ToLower(question), strings.ToLower(wire.Entity)) {
		intent.Entity = strings.TrimSpace(wire.Entity)
	}

	if wire.Field != "" {
		field, ok := bestSchemaField(snap, wire.Field)
		if !ok {
			return nil, false
		}
		intent.Field = field
	}

	if wire.FilterField != "" {
		field, ok := bestSchemaField(snap, wire.FilterField)
		if !ok {
			return nil, false
		}
		intent.FilterField = field
		intent.FilterValue = strings.TrimSpace(wire.FilterValue)
	}

	if intent.Field == "" && intent.FilterField == "" {
		return nil, false
	}

	lower := strings.ToLower(question)
	for _, w := range []string{"name", "names", "which", "who"} {
		if strings.Contains(lower, w) {
			intent.WantsNames = true
			break
		}
	}

	return &intent, true
}

func hasAnaphoricReference(q string) bool {
	for _, token := range anaphoricTokens {
		if strings.Contains(q, token) {
			return true
		}
	}
	return false
}

func isOutOfScope(q string) bool {
	for _, indicator := range outOfScopeIndicators {
		if strings.Contains(q, indicator) {
			return true
		}
	}
	return false
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func buildIntentPrompt(snap *domain.Snapshot, question string, history []domain.ConversationTurn) string {
	var b strings.Builder
	b.WriteString("You are a query parser for an insurance proposal database. ")
	b.WriteString("Parse the question and output ONLY a JSON object with fields: ")
	b.WriteString(`{"operation": "lookup|count|list|exists", "quote_id": "MYJADEQTXXX or empty", "entity": "business or person name from the question or empty", "field": "field name or empty", "filter_field": "field name or empty", "filter_value": "decoded value to filter on or empty"}`)
	b.WriteString("\n\nKNOWN FIELDS:\n")
	for _, field := range schemaFieldVocabulary(snap) {
		b.WriteString("- " + field + "\n")
	}
	if len(history) > 0 {
		b.WriteString("\nCONVERSATION HISTORY (most recent last):\n")
		for _, turn := range history {
			b.WriteString("Q: " + turn.Question + "\n")
			b.WriteString("A: " + truncate(turn.Answer, 200) + "\n")
		}
	}
	b.WriteString("\nRULES:\n")
	b.WriteString("- operation must be exactly one word from the vocabulary.\n")
	b.WriteString("- entity must be copied verbatim from the CURRENT question, never from history.\n")
	b.WriteString("- negation words (don't have, without, not) flip the filter value.\n")
	b.WriteString("\nCURRENT QUESTION: " + question + "\n\nJSON:")
	return b.String()
}

func schemaFieldVocabulary(snap *domain.Snapshot) []string {
	set := make(map[string]struct{})
	for _, schema := range snap.Schemas {
		for _, f := range schema.Fields {
			set[f] = struct{}{}
		}
	}
	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

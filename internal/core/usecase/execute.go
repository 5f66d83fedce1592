package usecase

import (
	"strings"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// IntentExecutor runs a validated intent against the snapshot. All lookups
// are deterministic: the data comes straight from the records, results are
// ordered by quote ID, and no generation is involved.
type IntentExecutor struct {
	formatter *Formatter
}

func NewIntentExecutor(formatter *Formatter) *IntentExecutor {
	return &IntentExecutor{formatter: formatter}
}

// Execute resolves the intent into an answer, or signals no match so the
// engine can fall through to semantic retrieval.
func (e *IntentExecutor) Execute(snap *domain.Snapshot, intent *domain.ResolvedIntent) (*domain.Answer, bool) {
	switch intent.Operation {
	case domain.OpLookup:
		return e.lookup(snap, intent)
	case domain.OpCount, domain.OpList:
		return e.filter(snap, intent)
	case domain.OpExists:
		return e.exists(snap, intent)
	}
	return nil, false
}

func (e *IntentExecutor) lookup(snap *domain.Snapshot, intent *domain.ResolvedIntent) (*domain.Answer, bool) {
	records := e.targetRecords(snap, intent)
	if len(records) == 0 || intent.Field == "" {
		return nil, false
	}

	for _, rec := range records {
		field, value, ok := bestFieldValue(rec, intent.Field)
		if !ok {
			continue
		}
		ident := rec.BusinessName
		if ident == "" {
			ident = rec.QuoteID
		} else {
			ident += " (" + rec.QuoteID + ")"
		}
		return &domain.Answer{
			Text:     e.formatter.Lookup(FieldLabel(field), ident, value),
			Strategy: domain.StrategyLLMAssisted,
			Evidence: []string{rec.QuoteID},
		}, true
	}
	return nil, false
}

func (e *IntentExecutor) filter(snap *domain.Snapshot, intent *domain.ResolvedIntent) (*domain.Answer, bool) {
	if intent.FilterField == "" {
		return nil, false
	}
	matched := scanRecords(snap, intent.FilterField, intent.FilterValue)
	if len(matched) == 0 {
		return nil, false
	}

	if intent.Operation == domain.OpCount && !intent.WantsNames {
		return &domain.Answer{
			Text:     e.formatter.Count(len(matched), nil),
			Strategy: domain.StrategyLLMAssisted,
			Evidence: matched,
		}, true
	}

	names := businessNames(snap, matched)
	text := e.formatter.List(names)
	if intent.Operation == domain.OpCount {
		text = e.formatter.Count(len(matched), names)
	}
	return &domain.Answer{
		Text:     text,
		Strategy: domain.StrategyLLMAssisted,
		Evidence: matched,
	}, true
}

func (e *IntentExecutor) exists(snap *domain.Snapshot, intent *domain.ResolvedIntent) (*domain.Answer, bool) {
	records := e.targetRecords(snap, intent)
	field := intent.Field
	if field == "" {
		field = intent.FilterField
	}
	if len(records) == 0 || field == "" {
		return nil, false
	}

	rec := records[0]
	_, value, ok := bestFieldValue(rec, field)
	if !ok {
		return nil, false
	}

	positive := strings.EqualFold(value, "Yes")
	subject := FieldLabel(field) + " applies to " + rec.BusinessName
	return &domain.Answer{
		Text:     e.formatter.Exists(subject, positive),
		Strategy: domain.StrategyLLMAssisted,
		Evidence: []string{rec.QuoteID},
	}, true
}

// targetRecords narrows the snapshot to the records an intent addresses,
// by quote ID first, then by business or person name, ordered by quote ID.
func (e *IntentExecutor) targetRecords(snap *domain.Snapshot, intent *domain.ResolvedIntent) []*domain.Record {
	if intent.QuoteID != "" {
		if rec, ok := snap.Records[intent.QuoteID]; ok {
			return []*domain.Record{rec}
		}
		return nil
	}
	if intent.Entity == "" {
		return nil
	}

	needle := strings.ToLower(intent.Entity)
	out := make([]*domain.Record, 0, 1)
	for _, id := range snap.QuoteIDs() {
		rec := snap.Records[id]
		if strings.Contains(strings.ToLower(rec.BusinessName), needle) ||
			strings.Contains(strings.ToLower(rec.PersonName), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// bestFieldValue finds the record field best matching the requested name
// across all sections, using the same scoring for every caller.
func bestFieldValue(rec *domain.Record, requested string) (string, string, bool) {
	bestScore := 0
	var bestField, bestValue string
	for _, section := range rec.Sections {
		for field, value := range section.Fields {
			if score := fieldMatchScore(requested, field); score > bestScore {
				bestScore = score
				bestField = field
				bestValue = value
			}
		}
	}
	if bestScore < 10 {
		return "", "", false
	}
	return bestField, bestValue, true
}

// bestSchemaField resolves a requested field name against the schema
// vocabulary. Names that cannot be resolved are rejected rather than passed
// through, keeping invented LLM field names out of execution.
func bestSchemaField(snap *domain.Snapshot, requested string) (string, bool) {
	bestScore := 0
	var best string
	for _, schema := range snap.Schemas {
		for _, field := range schema.Fields {
			if score := fieldMatchScore(requested, field); score > bestScore {
				bestScore = score
				best = field
			}
		}
	}
	if bestScore < 10 {
		return "", false
	}
	return best, true
}

// fieldMatchScore scores how well a requested field name matches an actual
// one: exact normalized match, containment, then word overlap.
func fieldMatchScore(requested, actual string) int {
	req := normalizeField(requested)
	act := normalizeField(actual)

	if req == act {
		return 100
	}
	if strings.Contains(act, req) || strings.Contains(req, act) {
		shorter := len(req)
		if len(act) < shorter {
			shorter = len(act)
		}
		return 50 + shorter
	}

	noise := map[string]struct{}{"the": {}, "a": {}, "an": {}, "of": {}, "in": {}, "for": {}, "is": {}, "do": {}, "you": {}, "label": {}}
	overlap := 0
	actWords := make(map[string]struct{})
	for _, w := range strings.Fields(act) {
		if _, skip := noise[w]; !skip {
			actWords[w] = struct{}{}
		}
	}
	for _, w := range strings.Fields(req) {
		if _, skip := noise[w]; skip {
			continue
		}
		if _, ok := actWords[w]; ok {
			overlap++
		}
	}
	return overlap * 10
}

func normalizeField(f string) string {
	out := strings.ToLower(f)
	out = strings.TrimSuffix(out, "_label")
	return strings.ReplaceAll(out, "_", " ")
}

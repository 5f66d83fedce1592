package usecase

import (
	"sort"
	"strings"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// StructuredLookup answers questions that name a quote ID and a record field,
// straight from the snapshot. It sits between the corpus-wide analytical
// resolver and the intent parser, so these questions keep working when the
// model is unavailable.
type StructuredLookup struct {
	formatter *Formatter
}

func NewStructuredLookup(formatter *Formatter) *StructuredLookup {
	return &StructuredLookup{formatter: formatter}
}

// Resolve extracts a quote ID from the question and matches the rest of the
// text against the record's field labels. The third return value is false
// when no quote ID is present, the ID is unknown, or no field matches.
func (s *StructuredLookup) Resolve(snap *domain.Snapshot, question string) (*domain.Answer, *domain.ResolvedIntent, bool) {
	match := quoteIDPattern.FindString(question)
	if match == "" {
		return nil, nil, false
	}
	quoteID := strings.ToUpper(match)
	rec, ok := snap.Records[quoteID]
	if !ok {
		return nil, nil, false
	}

	field, value, ok := fieldMentioned(rec, strings.ToLower(question))
	if !ok {
		return nil, nil, false
	}

	ident := rec.BusinessName
	if ident == "" {
		ident = rec.QuoteID
	} else {
		ident += " (" + rec.QuoteID + ")"
	}
	intent := &domain.ResolvedIntent{
		Operation: domain.OpLookup,
		QuoteID:   quoteID,
		Field:     field,
	}
	return &domain.Answer{
		Text:     s.formatter.Lookup(FieldLabel(field), ident, value),
		Strategy: domain.StrategyDeterministic,
		Evidence: []string{quoteID},
	}, intent, true
}

// fieldMentioned finds the record field whose normalized name appears in the
// question. Longer names win so "number of cameras" is not shadowed by a
// shorter overlapping label; ties break on field name to keep the result
// stable across map iteration order.
func fieldMentioned(rec *domain.Record, q string) (string, string, bool) {
	var bestField, bestValue string
	bestLen := 0
	for _, section := range rec.Sections {
		fields := make([]string, 0, len(section.Fields))
		for field := range section.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			name := normalizeField(field)
			if len(name) <= 3 || !strings.Contains(q, name) {
				continue
			}
			if len(name) > bestLen || (len(name) == bestLen && field < bestField) {
				bestLen = len(name)
				bestField = field
				bestValue = section.Fields[field]
			}
		}
	}
	if bestField == "" {
		return "", "", false
	}
	return bestField, bestValue, true
}

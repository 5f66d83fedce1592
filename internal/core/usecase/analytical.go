package usecase

import (
	"strings"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// featureCondition maps a natural-language feature phrase to the field that
// encodes it. Values are the decoded labels stored in the snapshot.
type featureCondition struct {
	field    string
	yesValue string
	noValue  string
}

// Feature phrases recognized without LLM involvement. Longer phrases are
// checked first so "cctv maintenance" wins over "cctv".
var featurePhrases = []struct {
	phrase string
	cond   featureCondition
}{
	{"standard operating procedure", featureCondition{"standard_operating_procedure_label", "Yes", "No"}},
	{"cctv maintenance contract", featureCondition{"cctv_maintenance_contract_label", "Yes", "No"}},
	{"cctv maintenance", featureCondition{"cctv_maintenance_contract_label", "Yes", "No"}},
	{"cctv recording", featureCondition{"recording_label", "Yes", "No"}},
	{"cctv", featureCondition{"do_you_have_cctv_installed_label", "Yes", "No"}},
	{"central monitoring", featureCondition{"central_monitoring_stations_label", "Yes", "No"}},
	{"armoured vehicle", featureCondition{"do_you_use_armoured_vehicle_label", "Yes", "No"}},
	{"armored vehicle", featureCondition{"do_you_use_armoured_vehicle_label", "Yes", "No"}},
	{"armed guards", featureCondition{"do_you_use_armed_guards_during_transit_label", "Yes", "No"}},
	{"guards at premise", featureCondition{"do_you_use_guards_at_premise_label", "Yes", "No"}},
	{"gps tracker", featureCondition{"installed_gps_tracker_in_transit_vehicles_label", "Yes", "No"}},
	{"jaguar transit", featureCondition{"usage_of_jaguar_transit_label", "Yes", "No"}},
	{"strong room", featureCondition{"do_you_have_a_strong_room_label", "Yes", "No"}},
	{"time locking", featureCondition{"time_locking_label", "Yes", "No"}},
	{"display window", featureCondition{"do_you_have_display_window_label", "Yes", "No"}},
	{"counter showcase", featureCondition{"do_you_have_counter_showcase_label", "Yes", "No"}},
	{"wall showcase", featureCondition{"do_you_have_wall_showcase_label", "Yes", "No"}},
	{"stock records", featureCondition{"do_you_keep_detailed_records_of_stock_movements_label", "Yes", "No"}},
	{"detailed records", featureCondition{"do_you_keep_detailed_records_of_stock_movements_label", "Yes", "No"}},
	{"background check", featureCondition{"background_checks_for_all_employees_label", "Yes", "No"}},
	{"shoplifting", featureCondition{"shop_lifting_label", "Yes", "No"}},
	{"shop lifting", featureCondition{"shop_lifting_label", "Yes", "No"}},
	{"alarm maintenance", featureCondition{"under_maintenance_contract_label", "Yes", "No"}},
	{"alarm", featureCondition{"do_you_have_alarm_label", "Yes", "No"}},
	{"sop", featureCondition{"standard_operating_procedure_label", "Yes", "No"}},
}

var (
	countSignals  = []string{"how many", "count", "number of", "total"}
	listSignals   = []string{"list all", "which proposals", "which businesses", "which records", "show all", "what are all"}
	existsSignals = []string{"does ", "do ", "is there", "are there", "has ", "have any"}
	negations     = []string{"don't have", "dont have", "do not have", "without", "not have", "haven't", "lack"}
)

// AnalyticalResolver answers counting/filtering questions by scanning the
// snapshot. No LLM call: the same snapshot and question always produce the
// same result. An unidentifiable condition signals no match so the engine
// can fall through to LLM-assisted parsing.
type AnalyticalResolver struct {
	formatter *Formatter
}

func NewAnalyticalResolver(formatter *Formatter) *AnalyticalResolver {
	return &AnalyticalResolver{formatter: formatter}
}

// Resolve answers the question by scanning the snapshot. The returned intent
// carries the applied filter so later follow-up questions can inherit it.
func (r *AnalyticalResolver) Resolve(snap *domain.Snapshot, question string) (*domain.Answer, *domain.ResolvedIntent, bool) {
	q := strings.ToLower(strings.TrimSpace(question))

	op, ok := classifyAnalyticalOp(q)
	if !ok {
		return nil, nil, false
	}

	// Questions about one specific record belong to the structured lookup
	// or the intent parser, not to a corpus-wide scan.
	if mentionsSpecificRecord(snap, q) {
		return nil, nil, false
	}

	cond, ok := extractCondition(snap, q)
	if !ok {
		return nil, nil, false
	}

	want := cond.yesValue
	for _, n := range negations {
		if strings.Contains(q, n) {
			want = cond.noValue
			break
		}
	}

	matched := scanRecords(snap, cond.field, want)
	// A grounded answer needs evidence. Zero matches means this resolver
	// cannot prove anything about the condition, so let later strategies try.
	if len(matched) == 0 {
		return nil, nil, false
	}
	intent := &domain.ResolvedIntent{
		Operation:   op,
		FilterField: cond.field,
		FilterValue: want,
	}

	switch op {
	case domain.OpCount:
		return &domain.Answer{
			Text:     r.formatter.Count(len(matched), nil),
			Strategy: domain.StrategyDeterministic,
			Evidence: matched,
		}, intent, true
	case domain.OpList:
		names := businessNames(snap, matched)
		return &domain.Answer{
			Text:     r.formatter.List(names),
			Strategy: domain.StrategyDeterministic,
			Evidence: matched,
		}, intent, true
	default: // exists
		subject := "at least one proposal matches"
		return &domain.Answer{
			Text:     r.formatter.Exists(subject, len(matched) > 0),
			Strategy: domain.StrategyDeterministic,
			Evidence: matched,
		}, intent, true
	}
}

func classifyAnalyticalOp(q string) (domain.Operation, bool) {
	for _, s := range countSignals {
		if strings.Contains(q, s) {
			return domain.OpCount, true
		}
	}
	for _, s := range listSignals {
		if strings.Contains(q, s) {
			return domain.OpList, true
		}
	}
	for _, s := range existsSignals {
		if strings.HasPrefix(q, s) || strings.Contains(q, " any proposal") {
			return domain.OpExists, true
		}
	}
	return "", false
}

// extractCondition identifies the field a question is about through the
// feature phrase table. Only fields with a known yes/no vocabulary are
// eligible; free-form labels cannot be scanned for equality.
func extractCondition(snap *domain.Snapshot, q string) (featureCondition, bool) {
	for _, fp := range featurePhrases {
		if strings.Contains(q, fp.phrase) {
			if fieldKnown(snap, fp.cond.field) {
				return fp.cond, true
			}
		}
	}
	return featureCondition{}, false
}

// mentionsSpecificRecord reports whether the question names a quote ID or a
// business/person from the snapshot.
func mentionsSpecificRecord(snap *domain.Snapshot, q string) bool {
	if quoteIDPattern.MatchString(q) {
		return true
	}
	for _, rec := range snap.Records {
		if name := strings.ToLower(rec.BusinessName); name != "" && strings.Contains(q, name) {
			return true
		}
		if name := strings.ToLower(rec.PersonName); name != "" && strings.Contains(q, name) {
			return true
		}
	}
	return false
}

func fieldKnown(snap *domain.Snapshot, field string) bool {
	for _, schema := range snap.Schemas {
		for _, f := range schema.Fields {
			if f == field {
				return true
			}
		}
	}
	return false
}

// scanRecords returns the quote IDs whose field equals want, in ascending
// order so repeated calls on an unchanged snapshot are identical.
func scanRecords(snap *domain.Snapshot, field, want string) []string {
	matched := make([]string, 0)
	for _, id := range snap.QuoteIDs() {
		rec := snap.Records[id]
		for _, section := range rec.Sections {
			if v, ok := section.Fields[field]; ok && strings.EqualFold(v, want) {
				matched = append(matched, id)
				break
			}
		}
	}
	return matched
}

func businessNames(snap *domain.Snapshot, quoteIDs []string) []string {
	names := make([]string, 0, len(quoteIDs))
	for _, id := range quoteIDs {
		if rec, ok := snap.Records[id]; ok {
			names = append(names, rec.BusinessName+" ("+id+")")
		}
	}
	return names
}
